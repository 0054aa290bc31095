package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"groupregistration/internal/domain"
)

const uniqueViolation = "23505"

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type registrationRequestRepository struct {
	DB *sql.DB
}

func NewRegistrationRequestRepository(db *sql.DB) domain.RegistrationRequestRepository {
	return &registrationRequestRepository{DB: db}
}

func (r *registrationRequestRepository) ListPendingGroupIDs(ctx context.Context, userID int64) ([]int64, error) {
	return listPendingGroupIDs(ctx, r.DB, userID)
}

// CreateBatch locks the user row for the duration of the transaction so that
// concurrent submissions of the same user are serialized, then re-checks the
// pending set before inserting. The partial unique index on
// (user_id, registrable_group_id) WHERE pending backs this up.
func (r *registrationRequestRepository) CreateBatch(ctx context.Context, batch *domain.RegistrationBatch) ([]*domain.RegistrationRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, batch.UserID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	pending, err := listPendingGroupIDs(ctx, tx, batch.UserID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	pendingSet := make(map[int64]struct{}, len(pending))
	for _, id := range pending {
		pendingSet[id] = struct{}{}
	}

	query := `
		INSERT INTO registration_requests (user_id, registrable_group_id, unsubscribe, pending, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	reqs := batch.Requests()
	for _, req := range reqs {
		if _, ok := pendingSet[req.RegistrableGroupID]; ok {
			return nil, domain.ErrDuplicatePending
		}
		err := tx.QueryRowContext(ctx, query, req.UserID, req.RegistrableGroupID, req.Unsubscribe, req.Pending, req.CreatedAt).
			Scan(&req.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return nil, domain.ErrDuplicatePending
			}
			return nil, fmt.Errorf("insert registration request: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reqs, nil
}

func listPendingGroupIDs(ctx context.Context, q queryer, userID int64) ([]int64, error) {
	query := `
		SELECT registrable_group_id
		FROM registration_requests
		WHERE user_id = $1 AND pending = TRUE
	`
	rows, err := q.QueryContext(ctx, query, userID)
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
