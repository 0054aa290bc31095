package services

import (
	"fmt"

	"groupregistration/internal/domain"
)

// ValidateSubmission checks every join id against the join-offer set and every
// leave id against the leave-offer set of state. It returns the submission with
// duplicate ids removed, a *domain.ValidationError for ids outside their offer
// set (or decoding errors carried by sub), or domain.ErrEmptySubmission when
// the submission is valid but selects nothing.
func ValidateSubmission(sub *domain.Submission, state *domain.MembershipState) (*domain.Submission, error) {
	verr := domain.NewValidationError()
	verr.Merge(sub.FieldErrors)

	joinIDs := uniqueIDs(sub.JoinIDs)
	for _, id := range joinIDs {
		if !state.CanJoin(id) {
			verr.Add(domain.FieldGroups, notAValidChoice(id))
		}
	}
	leaveIDs := uniqueIDs(sub.LeaveIDs)
	for _, id := range leaveIDs {
		if !state.CanLeave(id) {
			verr.Add(domain.FieldUnsubscribeGroups, notAValidChoice(id))
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	valid := &domain.Submission{JoinIDs: joinIDs, LeaveIDs: leaveIDs}
	if valid.IsEmpty() {
		return valid, domain.ErrEmptySubmission
	}
	return valid, nil
}

func notAValidChoice(id int64) string {
	return fmt.Sprintf("'%d' is not a valid choice for this field", id)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
