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

// ReviewRepository manages persistence for tutor reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByTutor returns a tutor's reviews newest first, with reviewer info.
func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error) {
	const query = `SELECT rv.id, rv.tutor_id, rv.student_id, u.full_name AS student_name, u.avatar, rv.rating, rv.comment, rv.created_at
		FROM reviews rv JOIN users u ON u.id = rv.student_id
		WHERE rv.tutor_id = $1 ORDER BY rv.created_at DESC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, tutorID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ExistsByTutorAndStudent reports whether the student already reviewed
// the tutor.
func (r *ReviewRepository) ExistsByTutorAndStudent(ctx context.Context, tutorID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM reviews WHERE tutor_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tutorID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return true, nil
}

// Create inserts a new review record.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reviews (id, tutor_id, student_id, rating, comment, created_at)
		VALUES (:id, :tutor_id, :student_id, :rating, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// AggregateByTutor computes the arithmetic mean rating and review count
// for a tutor.
func (r *ReviewRepository) AggregateByTutor(ctx context.Context, tutorID string) (float64, int, error) {
	const query = `SELECT COALESCE(AVG(rating), 0) AS rating, COUNT(*) AS total FROM reviews WHERE tutor_id = $1`
	var agg struct {
		Rating float64 `db:"rating"`
		Total  int     `db:"total"`
	}
	if err := r.db.GetContext(ctx, &agg, query, tutorID); err != nil {
		return 0, 0, fmt.Errorf("aggregate reviews: %w", err)
	}
	return agg.Rating, agg.Total, nil
}
