package services

import "groupregistration/internal/domain"

// BuildMembershipState classifies each catalog entry for a user.
// catalog must already be ordered for display; the order is kept.
// pendingIDs are registrable group ids with a pending request, memberGroupIDs
// are underlying group ids the user belongs to.
func BuildMembershipState(catalog []*domain.RegistrableGroup, pendingIDs, memberGroupIDs []int64) *domain.MembershipState {
	pending := make(map[int64]struct{}, len(pendingIDs))
	for _, id := range pendingIDs {
		pending[id] = struct{}{}
	}
	member := make(map[int64]struct{}, len(memberGroupIDs))
	for _, id := range memberGroupIDs {
		member[id] = struct{}{}
	}

	state := domain.NewMembershipState()
	for _, g := range catalog {
		_, isPending := pending[g.ID]
		isMember := false
		if g.GroupID != nil {
			_, isMember = member[*g.GroupID]
		}
		state.Add(domain.GroupState{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Pending:     isPending,
			Member:      isMember,
		})
	}
	return state
}
