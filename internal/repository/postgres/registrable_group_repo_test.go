package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrableGroupRepository_ListOrderedByTitle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, group_id\s+FROM registrable_groups\s+ORDER BY title ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "group_id"}).
			AddRow(int64(1), "A", "first", int64(10)).
			AddRow(int64(2), "B", nil, nil))

	repo := NewRegistrableGroupRepository(db)
	groups, err := repo.ListOrderedByTitle(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, int64(1), groups[0].ID)
	assert.Equal(t, "first", groups[0].Description)
	require.NotNil(t, groups[0].GroupID)
	assert.Equal(t, int64(10), *groups[0].GroupID)

	assert.Equal(t, "B", groups[1].Title)
	assert.Empty(t, groups[1].Description)
	assert.Nil(t, groups[1].GroupID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrableGroupRepository_ListOrderedByTitle_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, group_id`).WillReturnError(sql.ErrConnDone)

	repo := NewRegistrableGroupRepository(db)
	_, err = repo.ListOrderedByTitle(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}
