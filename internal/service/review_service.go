package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
)

type reviewRepository interface {
	ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error)
	ExistsByTutorAndStudent(ctx context.Context, tutorID, studentID string) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	AggregateByTutor(ctx context.Context, tutorID string) (float64, int, error)
}

type reviewTutorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
	UpdateRating(ctx context.Context, id string, rating float64, totalReviews int) error
}

type reviewUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type listingInvalidator interface {
	InvalidateListings(ctx context.Context) error
}

// CreateReviewRequest describes a review submission.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ReviewService manages tutor reviews. Each student may review a tutor
// once; every accepted review recomputes the tutor's mean rating and
// review count from stored reviews.
type ReviewService struct {
	repo      reviewRepository
	tutors    reviewTutorRepository
	users     reviewUserReader
	listings  listingInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs ReviewService.
func NewReviewService(repo reviewRepository, tutors reviewTutorRepository, users reviewUserReader, listings listingInvalidator, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{repo: repo, tutors: tutors, users: users, listings: listings, validator: validate, logger: logger}
}

// Create records a student's review of a tutor and refreshes the
// tutor's rating aggregate.
func (s *ReviewService) Create(ctx context.Context, studentID, tutorID string, req CreateReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	if _, err := s.tutors.FindByID(ctx, tutorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}

	exists, err := s.repo.ExistsByTutorAndStudent(ctx, tutorID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you have already reviewed this tutor")
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	review := &models.Review{
		TutorID:     tutorID,
		StudentID:   studentID,
		StudentName: student.FullName,
		Avatar:      student.Avatar,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}

	mean, count, err := s.repo.AggregateByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate reviews")
	}
	if err := s.tutors.UpdateRating(ctx, tutorID, mean, count); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutor rating")
	}

	if s.listings != nil {
		if err := s.listings.InvalidateListings(ctx); err != nil {
			s.logger.Sugar().Warnw("failed to invalidate directory cache", "error", err)
		}
	}
	s.logger.Sugar().Infow("review created", "tutor_id", tutorID, "student_id", studentID, "rating", req.Rating, "new_mean", mean, "review_count", count)
	return review, nil
}

// ListByTutor returns a tutor's reviews, newest first.
func (s *ReviewService) ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error) {
	reviews, err := s.repo.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}
