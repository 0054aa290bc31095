package postgres

import (
	"context"
	"database/sql"

	"groupregistration/internal/domain"
)

type registrableGroupRepository struct {
	DB *sql.DB
}

func NewRegistrableGroupRepository(db *sql.DB) domain.RegistrableGroupRepository {
	return &registrableGroupRepository{DB: db}
}

func (r *registrableGroupRepository) ListOrderedByTitle(ctx context.Context) ([]*domain.RegistrableGroup, error) {
	// id breaks title ties so the catalog order is stable.
	query := `
		SELECT id, title, description, group_id
		FROM registrable_groups
		ORDER BY title ASC, id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*domain.RegistrableGroup, 0)
	for rows.Next() {
		var (
			id          int64
			title       string
			description sql.NullString
			groupID     sql.NullInt64
		)
		if err := rows.Scan(&id, &title, &description, &groupID); err != nil {
			return nil, err
		}
		var linked *int64
		if groupID.Valid {
			linked = &groupID.Int64
		}
		groups = append(groups, domain.NewRegistrableGroup(id, title, description.String, linked))
	}
	return groups, rows.Err()
}
