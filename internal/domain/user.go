package domain

import "context"

// User is an account that can hold group memberships.
// swagger:model User
type User struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	GroupIDs []int64 `json:"group_ids"`
}

// NewUser returns a User with the given current group memberships.
func NewUser(id int64, name string, groupIDs []int64) *User {
	return &User{ID: id, Name: name, GroupIDs: groupIDs}
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// GetByName returns the user with its group memberships, or ErrUserNotFound.
	GetByName(ctx context.Context, name string) (*User, error)
}
