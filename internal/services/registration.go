package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"groupregistration/internal/domain"
)

type registrationService struct {
	groupRepo   domain.RegistrableGroupRepository
	userRepo    domain.UserRepository
	requestRepo domain.RegistrationRequestRepository
	notifier    domain.AdminNotifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewRegistrationService creates a RegistrationService with the given repositories and admin notifier.
func NewRegistrationService(
	groupRepo domain.RegistrableGroupRepository,
	userRepo domain.UserRepository,
	requestRepo domain.RegistrationRequestRepository,
	notifier domain.AdminNotifier,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, identity domain.Identity, submission *domain.Submission) (*domain.RegistrationResult, error) {
	username, ok := identity.Username()
	if !ok {
		s.logger.InfoContext(ctx, "user is not signed in")
		return nil, domain.ErrAuthenticationMissing
	}

	user, err := s.userRepo.GetByName(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "could not find user", "username", username)
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	state, err := s.loadState(ctx, user)
	if err != nil {
		return nil, err
	}
	result := &domain.RegistrationResult{
		Outcome: domain.OutcomeDisplay,
		User:    user,
		State:   state,
	}
	if submission == nil {
		return result, nil
	}

	valid, err := ValidateSubmission(submission, state)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			s.logger.WarnContext(ctx, "invalid registration submission", "username", username, "errors", verr.Fields)
			result.Outcome = domain.OutcomeSubmittedInvalid
			result.FieldErrors = verr.Fields
			return result, nil
		case errors.Is(err, domain.ErrEmptySubmission):
			result.Outcome = domain.OutcomeSubmittedEmpty
			return result, nil
		default:
			return nil, err
		}
	}

	batch := &domain.RegistrationBatch{
		UserID:    user.ID,
		JoinIDs:   valid.JoinIDs,
		LeaveIDs:  valid.LeaveIDs,
		CreatedAt: s.now().UTC(),
	}
	reqs, err := s.requestRepo.CreateBatch(ctx, batch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicatePending):
			s.logger.WarnContext(ctx, "registration request already pending", "username", username)
			// Show what is pending now instead of the stale state.
			state, err := s.loadState(ctx, user)
			if err != nil {
				return nil, err
			}
			result.State = state
			result.Outcome = domain.OutcomeSubmittedDuplicate
			return result, nil
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, domain.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "could not store registration requests", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.logger.InfoContext(ctx, "registration requests created",
		"username", username,
		"join", len(batch.JoinIDs),
		"leave", len(batch.LeaveIDs),
	)

	s.notifier.NotifyAdmins(ctx, &domain.AdminNotificationData{
		User:              user,
		Groups:            state.Titles(batch.JoinIDs),
		UnsubscribeGroups: state.Titles(batch.LeaveIDs),
	})

	result.Outcome = domain.OutcomeSubmittedValid
	result.Requests = reqs
	return result, nil
}

func (s *registrationService) loadState(ctx context.Context, user *domain.User) (*domain.MembershipState, error) {
	catalog, err := s.groupRepo.ListOrderedByTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrable groups: %w", err)
	}
	pending, err := s.requestRepo.ListPendingGroupIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return BuildMembershipState(catalog, pending, user.GroupIDs), nil
}
