package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
)

type wishlistRepository interface {
	ListTutorIDs(ctx context.Context, studentID string) ([]string, error)
	Has(ctx context.Context, studentID, tutorID string) (bool, error)
	Add(ctx context.Context, studentID, tutorID string) error
	Remove(ctx context.Context, studentID, tutorID string) error
	ListTutors(ctx context.Context, studentID string) ([]models.Tutor, error)
}

type wishlistTutorReader interface {
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
}

// WishlistService manages per-student tutor wishlists. A wishlist is a
// set: toggling a saved tutor removes it, toggling an unsaved tutor
// adds it.
type WishlistService struct {
	repo   wishlistRepository
	tutors wishlistTutorReader
	logger *zap.Logger
}

// NewWishlistService constructs WishlistService.
func NewWishlistService(repo wishlistRepository, tutors wishlistTutorReader, logger *zap.Logger) *WishlistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistService{repo: repo, tutors: tutors, logger: logger}
}

// Toggle adds the tutor to the student's wishlist, or removes it when
// already saved. The full updated list of saved tutor ids is returned.
func (s *WishlistService) Toggle(ctx context.Context, studentID, tutorID string) (*models.WishlistToggleResult, error) {
	if _, err := s.tutors.FindByID(ctx, tutorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}

	saved, err := s.repo.Has(ctx, studentID, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read wishlist")
	}

	message := "Tutor added to wishlist"
	if saved {
		message = "Tutor removed from wishlist"
		err = s.repo.Remove(ctx, studentID, tutorID)
	} else {
		err = s.repo.Add(ctx, studentID, tutorID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update wishlist")
	}

	ids, err := s.repo.ListTutorIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read wishlist")
	}
	if ids == nil {
		ids = []string{}
	}
	return &models.WishlistToggleResult{Message: message, Wishlist: ids}, nil
}

// ListTutors returns the saved tutors' profiles in the order they were
// saved.
func (s *WishlistService) ListTutors(ctx context.Context, studentID string) ([]models.Tutor, error) {
	tutors, err := s.repo.ListTutors(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list wishlist")
	}
	if tutors == nil {
		tutors = []models.Tutor{}
	}
	return tutors, nil
}

// Merge folds locally kept tutor ids into the student's stored
// wishlist. Already-saved and unknown tutors are skipped, so the result
// is the union of both lists. The merged id list is returned.
func (s *WishlistService) Merge(ctx context.Context, studentID string, tutorIDs []string) ([]string, error) {
	for _, tutorID := range tutorIDs {
		if tutorID == "" {
			continue
		}
		if _, err := s.tutors.FindByID(ctx, tutorID); err != nil {
			if err == sql.ErrNoRows {
				s.logger.Sugar().Debugw("skipping unknown tutor during wishlist merge", "tutor_id", tutorID)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
		}
		if err := s.repo.Add(ctx, studentID, tutorID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to merge wishlist")
		}
	}

	ids, err := s.repo.ListTutorIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read wishlist")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
