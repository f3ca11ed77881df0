package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/educonnect-pk/educonnect-api/internal/models"
)

// WishlistRepository manages a student's saved tutors. Rows are unique
// per (student, tutor) pair so the table behaves as a set.
type WishlistRepository struct {
	db *sqlx.DB
}

// NewWishlistRepository constructs a WishlistRepository.
func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// ListTutorIDs returns the saved tutor identifiers in insertion order.
func (r *WishlistRepository) ListTutorIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT tutor_id FROM wishlist_items WHERE student_id = $1 ORDER BY created_at ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list wishlist ids: %w", err)
	}
	return ids, nil
}

// Has reports whether the tutor is on the student's wishlist.
func (r *WishlistRepository) Has(ctx context.Context, studentID, tutorID string) (bool, error) {
	const query = `SELECT 1 FROM wishlist_items WHERE student_id = $1 AND tutor_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, tutorID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check wishlist membership: %w", err)
	}
	return true, nil
}

// Add puts a tutor on the wishlist. Conflicting inserts are ignored so a
// repeated add stays idempotent.
func (r *WishlistRepository) Add(ctx context.Context, studentID, tutorID string) error {
	const query = `INSERT INTO wishlist_items (id, student_id, tutor_id, created_at)
		VALUES ($1, $2, $3, $4) ON CONFLICT (student_id, tutor_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, tutorID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// Remove takes a tutor off the wishlist.
func (r *WishlistRepository) Remove(ctx context.Context, studentID, tutorID string) error {
	const query = `DELETE FROM wishlist_items WHERE student_id = $1 AND tutor_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, tutorID); err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// ListTutors returns tutor summaries for the wishlisted tutors in
// insertion order.
func (r *WishlistRepository) ListTutors(ctx context.Context, studentID string) ([]models.Tutor, error) {
	const query = `SELECT t.id, t.user_id, u.full_name AS name, u.avatar, t.subjects, t.location, t.hourly_rate, t.rating, t.total_reviews, t.is_verified, t.about, t.availability, t.created_at
		FROM wishlist_items w
		JOIN tutors t ON t.id = w.tutor_id
		JOIN users u ON u.id = t.user_id
		WHERE w.student_id = $1 ORDER BY w.created_at ASC`
	var tutors []models.Tutor
	if err := r.db.SelectContext(ctx, &tutors, query, studentID); err != nil {
		return nil, fmt.Errorf("list wishlist tutors: %w", err)
	}
	return tutors, nil
}
