package domain

import (
	"context"
	"time"
)

// RegistrationRequest is a persisted join or leave request awaiting
// administrative approval. Unsubscribe is true for leave requests.
// swagger:model RegistrationRequest
type RegistrationRequest struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	RegistrableGroupID int64     `json:"registrable_group_id"`
	Unsubscribe        bool      `json:"unsubscribe"`
	Pending            bool      `json:"pending"`
	CreatedAt          time.Time `json:"created_at"`
}

// RegistrationBatch is a validated, non-empty submission ready to be written.
// All resulting rows share CreatedAt.
type RegistrationBatch struct {
	UserID    int64
	JoinIDs   []int64
	LeaveIDs  []int64
	CreatedAt time.Time
}

// Requests expands the batch into pending request rows, join requests first.
func (b *RegistrationBatch) Requests() []*RegistrationRequest {
	reqs := make([]*RegistrationRequest, 0, len(b.JoinIDs)+len(b.LeaveIDs))
	for _, id := range b.JoinIDs {
		reqs = append(reqs, &RegistrationRequest{
			UserID:             b.UserID,
			RegistrableGroupID: id,
			Unsubscribe:        false,
			Pending:            true,
			CreatedAt:          b.CreatedAt,
		})
	}
	for _, id := range b.LeaveIDs {
		reqs = append(reqs, &RegistrationRequest{
			UserID:             b.UserID,
			RegistrableGroupID: id,
			Unsubscribe:        true,
			Pending:            true,
			CreatedAt:          b.CreatedAt,
		})
	}
	return reqs
}

// RegistrationRequestRepository defines the interface for registration request storage.
type RegistrationRequestRepository interface {
	// ListPendingGroupIDs returns the registrable group ids with a pending request for the user.
	ListPendingGroupIDs(ctx context.Context, userID int64) ([]int64, error)
	// CreateBatch persists all requests of the batch in one transaction.
	// It returns ErrDuplicatePending without writing anything when one of the
	// groups already has a pending request for the user.
	CreateBatch(ctx context.Context, batch *RegistrationBatch) ([]*RegistrationRequest, error)
}

// Submission is a user's batch of join and leave ids. FieldErrors holds
// decoding problems found before validation (e.g. non-integer ids).
type Submission struct {
	JoinIDs     []int64
	LeaveIDs    []int64
	FieldErrors map[string][]string
}

// IsEmpty reports whether nothing was selected.
func (s *Submission) IsEmpty() bool {
	return len(s.JoinIDs) == 0 && len(s.LeaveIDs) == 0
}

// Outcome is the terminal state of one pass through the registration workflow.
type Outcome int

const (
	// OutcomeDisplay renders the current state (GET).
	OutcomeDisplay Outcome = iota
	// OutcomeSubmittedEmpty is a valid submission with nothing selected.
	OutcomeSubmittedEmpty
	// OutcomeSubmittedInvalid is a submission rejected by validation.
	OutcomeSubmittedInvalid
	// OutcomeSubmittedDuplicate is a submission that raced another one for the same groups.
	OutcomeSubmittedDuplicate
	// OutcomeSubmittedValid is a persisted submission.
	OutcomeSubmittedValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisplay:
		return "display"
	case OutcomeSubmittedEmpty:
		return "submitted_empty"
	case OutcomeSubmittedInvalid:
		return "submitted_invalid"
	case OutcomeSubmittedDuplicate:
		return "submitted_duplicate"
	case OutcomeSubmittedValid:
		return "submitted_valid"
	}
	return "unknown"
}

// RegistrationResult is what the workflow hands back for rendering.
type RegistrationResult struct {
	Outcome     Outcome
	User        *User
	State       *MembershipState
	FieldErrors map[string][]string
	Requests    []*RegistrationRequest
}

// RegistrationService runs the registration workflow for one request.
type RegistrationService interface {
	// Register loads the membership state for the identity and, when
	// submission is non-nil, validates and persists it.
	// ErrAuthenticationMissing and ErrUserNotFound terminate the workflow;
	// any other error is a persistence failure.
	Register(ctx context.Context, identity Identity, submission *Submission) (*RegistrationResult, error)
}
