package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistRepositoryListTutorIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWishlistRepository(db)

	mock.ExpectQuery(`SELECT tutor_id FROM wishlist_items WHERE student_id = \$1 ORDER BY created_at ASC`).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"tutor_id"}).AddRow("2").AddRow("5"))

	ids, err := repo.ListTutorIDs(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepositoryHas(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWishlistRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM wishlist_items WHERE student_id = \$1 AND tutor_id = \$2 LIMIT 1`).
		WithArgs("student-1", "2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM wishlist_items`).
		WithArgs("student-1", "9").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	saved, err := repo.Has(context.Background(), "student-1", "2")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = repo.Has(context.Background(), "student-1", "9")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepositoryAddIsIdempotentInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWishlistRepository(db)

	mock.ExpectExec(`INSERT INTO wishlist_items \(id, student_id, tutor_id, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT \(student_id, tutor_id\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "student-1", "2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Add(context.Background(), "student-1", "2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepositoryRemove(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWishlistRepository(db)

	mock.ExpectExec(`DELETE FROM wishlist_items WHERE student_id = \$1 AND tutor_id = \$2`).
		WithArgs("student-1", "2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Remove(context.Background(), "student-1", "2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepositoryListTutors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWishlistRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM wishlist_items w\s+JOIN tutors t ON t.id = w.tutor_id\s+JOIN users u ON u.id = t.user_id\s+WHERE w.student_id = \$1 ORDER BY w.created_at ASC`).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows(tutorRowColumns()).
			AddRow("2", "u2", "Fatima Ali", "", "{English,Urdu}", "Online", 1200, 4.5, 38, true, "", nil, now))

	tutors, err := repo.ListTutors(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "Fatima Ali", tutors[0].Name)
	assert.Equal(t, "Online", tutors[0].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}
