package postgres

import (
	"context"
	"database/sql"
	"errors"

	"groupregistration/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	query := `
		SELECT id, name
		FROM users
		WHERE name = $1
		LIMIT 1
	`
	var (
		id       int64
		userName string
	)
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&id, &userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	groupIDs, err := r.listGroupIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewUser(id, userName, groupIDs), nil
}

func (r *userRepository) listGroupIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT group_id
		FROM groups_users
		WHERE user_id = $1
		ORDER BY group_id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
