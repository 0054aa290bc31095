package domain

import "context"

// Group is an underlying membership entity a user can belong to directly.
// swagger:model Group
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RegistrableGroup is a group a user may request to join or leave.
// GroupID links it to an underlying Group; when nil the user can never be a
// member of it, only ever request to join.
// swagger:model RegistrableGroup
type RegistrableGroup struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	GroupID     *int64 `json:"group_id"`
}

// NewRegistrableGroup returns a RegistrableGroup. Pass a nil groupID for groups without an underlying group.
func NewRegistrableGroup(id int64, title, description string, groupID *int64) *RegistrableGroup {
	return &RegistrableGroup{
		ID:          id,
		Title:       title,
		Description: description,
		GroupID:     groupID,
	}
}

// RegistrableGroupRepository reads the registrable group catalog.
type RegistrableGroupRepository interface {
	// ListOrderedByTitle returns all registrable groups ordered by title ascending.
	ListOrderedByTitle(ctx context.Context) ([]*RegistrableGroup, error)
}
