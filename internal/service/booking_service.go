package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
	"github.com/educonnect-pk/educonnect-api/pkg/jobs"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.BookingView, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.BookingView, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type bookingTutorReader interface {
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Tutor, error)
}

type auditQueue interface {
	Enqueue(job jobs.Job) error
}

// CreateBookingRequest describes the booking creation payload.
type CreateBookingRequest struct {
	Date        string             `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string             `json:"time" validate:"required"`
	Duration    int                `json:"duration" validate:"required,oneof=60 90 120"`
	Subject     string             `json:"subject" validate:"required"`
	SessionType models.SessionType `json:"sessionType" validate:"required,oneof=online in-person"`
	Notes       string             `json:"notes"`
}

// UpdateBookingStatusRequest describes a status transition payload.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required"`
}

// BookingService orchestrates session booking workflows. Bookings are
// accepted without slot conflict checks: overlapping sessions for the
// same tutor are allowed and left to the tutor to resolve.
type BookingService struct {
	repo      bookingRepository
	tutors    bookingTutorReader
	audit     auditQueue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs BookingService.
func NewBookingService(repo bookingRepository, tutors bookingTutorReader, audit auditQueue, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, tutors: tutors, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// NewWizard starts a booking wizard for the given tutor.
func (s *BookingService) NewWizard(ctx context.Context, studentID, tutorID string) (*BookingWizard, error) {
	tutor, err := s.tutors.FindByID(ctx, tutorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	return NewBookingWizard(*tutor, studentID, s), nil
}

// Create books a session with a tutor on behalf of a student. The new
// booking starts in the pending state.
func (s *BookingService) Create(ctx context.Context, studentID, tutorID string, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	tutor, err := s.tutors.FindByID(ctx, tutorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	if !tutor.TeachesSubject(req.Subject) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject must be one the tutor teaches")
	}
	if req.SessionType == models.SessionInPerson && tutor.Location == models.LocationOnline {
		return nil, appErrors.Clone(appErrors.ErrValidation, "this tutor only offers online sessions")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be in YYYY-MM-DD format")
	}

	booking := &models.Booking{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		TutorID:     tutorID,
		Date:        date,
		TimeSlot:    req.Time,
		Duration:    req.Duration,
		Subject:     req.Subject,
		SessionType: req.SessionType,
		Notes:       req.Notes,
		TotalPrice:  tutor.HourlyRate * req.Duration / 60,
		Status:      models.BookingPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	if s.metrics != nil {
		s.metrics.RecordBookingCreated()
	}
	s.enqueueAudit(studentID, models.AuditActionBookingCreate, booking.ID, nil, booking)
	s.logger.Sugar().Infow("booking created", "booking_id", booking.ID, "tutor_id", tutorID, "student_id", studentID, "total_price", booking.TotalPrice)
	return booking, nil
}

// List returns the caller's bookings. Students see bookings they made,
// tutors see bookings made with them.
func (s *BookingService) List(ctx context.Context, userID string, role models.UserRole) ([]models.BookingView, error) {
	switch role {
	case models.RoleStudent:
		views, err := s.repo.ListByStudent(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
		}
		return views, nil
	case models.RoleTutor:
		tutor, err := s.tutors.FindByUserID(ctx, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				return []models.BookingView{}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor profile")
		}
		views, err := s.repo.ListByTutor(ctx, tutor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
		}
		return views, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students and tutors have bookings")
	}
}

// UpdateStatus transitions a booking's lifecycle state. Students may
// cancel their own pending or confirmed bookings; tutors may confirm,
// cancel or complete bookings made with them; admins may do anything.
// Cancelled and completed bookings are frozen.
func (s *BookingService) UpdateStatus(ctx context.Context, userID string, role models.UserRole, bookingID string, req UpdateBookingStatusRequest) (*models.Booking, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking is already "+string(booking.Status))
	}

	switch role {
	case models.RoleAdmin:
	case models.RoleStudent:
		if booking.StudentID != userID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not your booking")
		}
		if req.Status != models.BookingCancelled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only cancel bookings")
		}
	case models.RoleTutor:
		tutor, err := s.tutors.FindByUserID(ctx, userID)
		if err != nil || tutor.ID != booking.TutorID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not your booking")
		}
		if req.Status == models.BookingPending {
			return nil, appErrors.Clone(appErrors.ErrValidation, "bookings cannot return to pending")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}

	previous := *booking
	if err := s.repo.UpdateStatus(ctx, bookingID, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking")
	}
	booking.Status = req.Status

	s.enqueueAudit(userID, models.AuditActionBookingStatus, booking.ID, &previous, booking)
	s.logger.Sugar().Infow("booking status changed", "booking_id", booking.ID, "from", previous.Status, "to", booking.Status)
	return booking, nil
}

func (s *BookingService) enqueueAudit(userID, action, bookingID string, oldValue, newValue *models.Booking) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "bookings",
		ResourceID: &bookingID,
	}
	if oldValue != nil {
		entry.OldValues, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		entry.NewValues, _ = json.Marshal(newValue)
	}
	job := jobs.Job{ID: uuid.NewString(), Type: action, Payload: entry}
	if err := s.audit.Enqueue(job); err != nil {
		s.logger.Sugar().Warnw("failed to enqueue booking audit", "action", action, "booking_id", bookingID, "error", err)
	}
}
