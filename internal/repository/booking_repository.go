package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/educonnect-pk/educonnect-api/internal/models"
)

// BookingRepository manages persistence for session bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingRow struct {
	models.Booking
	PartyID     string `db:"party_id"`
	PartyName   string `db:"party_name"`
	PartyAvatar string `db:"party_avatar"`
}

const bookingColumns = `b.id, b.student_id, b.tutor_id, b.session_date, b.time_slot, b.duration, b.subject, b.session_type, b.notes, b.total_price, b.status, b.created_at, b.updated_at`

// Create inserts a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, student_id, tutor_id, session_date, time_slot, duration, subject, session_type, notes, total_price, status, created_at, updated_at)
		VALUES (:id, :student_id, :tutor_id, :session_date, :time_slot, :duration, :subject, :session_type, :notes, :total_price, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID fetches a booking by identifier.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT b.id, b.student_id, b.tutor_id, b.session_date, b.time_slot, b.duration, b.subject, b.session_type, b.notes, b.total_price, b.status, b.created_at, b.updated_at FROM bookings b WHERE b.id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByStudent returns a student's bookings with tutor info, soonest
// session first.
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BookingView, error) {
	query := fmt.Sprintf(`SELECT %s, t.id AS party_id, u.full_name AS party_name, u.avatar AS party_avatar
		FROM bookings b
		JOIN tutors t ON t.id = b.tutor_id
		JOIN users u ON u.id = t.user_id
		WHERE b.student_id = $1 ORDER BY b.session_date ASC`, bookingColumns)
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student bookings: %w", err)
	}

	views := make([]models.BookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.BookingView{
			Booking: row.Booking,
			Tutor:   &models.BookingParty{ID: row.PartyID, Name: row.PartyName, Avatar: row.PartyAvatar},
		})
	}
	return views, nil
}

// ListByTutor returns a tutor's bookings with student info, soonest
// session first.
func (r *BookingRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.BookingView, error) {
	query := fmt.Sprintf(`SELECT %s, u.id AS party_id, u.full_name AS party_name, u.avatar AS party_avatar
		FROM bookings b
		JOIN users u ON u.id = b.student_id
		WHERE b.tutor_id = $1 ORDER BY b.session_date ASC`, bookingColumns)
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, tutorID); err != nil {
		return nil, fmt.Errorf("list tutor bookings: %w", err)
	}

	views := make([]models.BookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.BookingView{
			Booking: row.Booking,
			Student: &models.BookingParty{ID: row.PartyID, Name: row.PartyName, Avatar: row.PartyAvatar},
		})
	}
	return views, nil
}

// UpdateStatus transitions a booking's lifecycle state.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}
