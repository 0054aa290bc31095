package domain

// GroupCategory is the disjoint classification of a registrable group for a user.
type GroupCategory int

const (
	// CategoryAvailable groups can be requested to join.
	CategoryAvailable GroupCategory = iota
	// CategoryMemberOnly groups can be requested to leave.
	CategoryMemberOnly
	// CategoryPending groups have a request awaiting approval.
	CategoryPending
)

func (c GroupCategory) String() string {
	switch c {
	case CategoryAvailable:
		return "available"
	case CategoryMemberOnly:
		return "member"
	case CategoryPending:
		return "pending"
	}
	return "unknown"
}

// GroupState is one annotated catalog entry.
// swagger:model GroupState
type GroupState struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Pending     bool   `json:"pending"`
	Member      bool   `json:"member"`
}

// Category classifies the entry. Pending wins over membership.
func (g GroupState) Category() GroupCategory {
	switch {
	case g.Pending:
		return CategoryPending
	case g.Member:
		return CategoryMemberOnly
	default:
		return CategoryAvailable
	}
}

// Choice is a selectable offer.
// swagger:model Choice
type Choice struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// MembershipState is the per-group classification of the catalog for one user.
type MembershipState struct {
	Groups     []GroupState
	JoinOffer  []Choice
	LeaveOffer []Choice

	titles   map[int64]string
	canJoin  map[int64]struct{}
	canLeave map[int64]struct{}
}

// NewMembershipState returns an empty state ready for Add.
func NewMembershipState() *MembershipState {
	return &MembershipState{
		Groups:     []GroupState{},
		JoinOffer:  []Choice{},
		LeaveOffer: []Choice{},
		titles:     make(map[int64]string),
		canJoin:    make(map[int64]struct{}),
		canLeave:   make(map[int64]struct{}),
	}
}

// Add appends an entry and records it in the offer set matching its category.
func (s *MembershipState) Add(g GroupState) {
	s.Groups = append(s.Groups, g)
	s.titles[g.ID] = g.Title
	switch g.Category() {
	case CategoryAvailable:
		s.JoinOffer = append(s.JoinOffer, Choice{ID: g.ID, Title: g.Title})
		s.canJoin[g.ID] = struct{}{}
	case CategoryMemberOnly:
		s.LeaveOffer = append(s.LeaveOffer, Choice{ID: g.ID, Title: g.Title})
		s.canLeave[g.ID] = struct{}{}
	}
}

// CanJoin reports whether id is in the join-offer set.
func (s *MembershipState) CanJoin(id int64) bool {
	_, ok := s.canJoin[id]
	return ok
}

// CanLeave reports whether id is in the leave-offer set.
func (s *MembershipState) CanLeave(id int64) bool {
	_, ok := s.canLeave[id]
	return ok
}

// Titles resolves ids to titles, skipping ids outside the catalog.
func (s *MembershipState) Titles(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.titles[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
