package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/educonnect-pk/educonnect-api/internal/models"
)

// TutorRepository manages persistence for tutor profiles.
type TutorRepository struct {
	db *sqlx.DB
}

// NewTutorRepository constructs a TutorRepository.
func NewTutorRepository(db *sqlx.DB) *TutorRepository {
	return &TutorRepository{db: db}
}

const tutorListColumns = `t.id, t.user_id, u.full_name AS name, u.avatar, t.subjects, t.location, t.hourly_rate, t.rating, t.total_reviews, t.is_verified, t.about, t.availability, t.created_at`

// List returns tutors matching the SQL-expressible filter criteria along
// with the total count. Listing order is profile creation order, which
// keeps result ordering stable across filter changes.
func (r *TutorRepository) List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, int, error) {
	base := "FROM tutors t JOIN users u ON u.id = t.user_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(t.subjects)", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("t.location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("t.hourly_rate >= $%d", len(args)+1))
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("t.hourly_rate <= $%d", len(args)+1))
		args = append(args, *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("t.rating >= $%d", len(args)+1))
		args = append(args, *filter.MinRating)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR EXISTS (SELECT 1 FROM unnest(t.subjects) AS s WHERE LOWER(s) LIKE $%d))", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY t.created_at ASC LIMIT %d OFFSET %d", tutorListColumns, base, size, offset)
	var tutors []models.Tutor
	if err := r.db.SelectContext(ctx, &tutors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tutors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tutors: %w", err)
	}

	return tutors, total, nil
}

// FindByID fetches a full tutor profile by ID.
func (r *TutorRepository) FindByID(ctx context.Context, id string) (*models.Tutor, error) {
	const query = `SELECT t.id, t.user_id, u.full_name AS name, u.avatar, t.subjects, t.location, t.hourly_rate, t.rating, t.total_reviews, t.is_verified, t.about, t.qualifications, t.experience, t.education, t.availability, t.created_at
		FROM tutors t JOIN users u ON u.id = t.user_id WHERE t.id = $1`
	var tutor models.Tutor
	if err := r.db.GetContext(ctx, &tutor, query, id); err != nil {
		return nil, err
	}
	return &tutor, nil
}

// FindByUserID fetches the tutor profile owned by a user account.
func (r *TutorRepository) FindByUserID(ctx context.Context, userID string) (*models.Tutor, error) {
	const query = `SELECT t.id, t.user_id, u.full_name AS name, u.avatar, t.subjects, t.location, t.hourly_rate, t.rating, t.total_reviews, t.is_verified, t.about, t.qualifications, t.experience, t.education, t.availability, t.created_at
		FROM tutors t JOIN users u ON u.id = t.user_id WHERE t.user_id = $1`
	var tutor models.Tutor
	if err := r.db.GetContext(ctx, &tutor, query, userID); err != nil {
		return nil, err
	}
	return &tutor, nil
}

// UpdateRating stores the recomputed review aggregate for a tutor.
func (r *TutorRepository) UpdateRating(ctx context.Context, id string, rating float64, totalReviews int) error {
	const query = `UPDATE tutors SET rating = $2, total_reviews = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, rating, totalReviews, time.Now().UTC()); err != nil {
		return fmt.Errorf("update tutor rating: %w", err)
	}
	return nil
}
