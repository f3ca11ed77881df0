package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
)

// FilterTutors returns the tutors satisfying every set criterion in
// opts, preserving input order. Unset criteria (nil pointers, empty
// strings, empty slices) match everything. Tutors missing a filtered
// field are excluded.
//
// Location matching is exact string equality. Earlier clients let a
// literal lowercase "online" location pass any location filter; that
// branch never matched real data and is intentionally not reproduced.
func FilterTutors(tutors []models.Tutor, opts models.FilterOptions) []models.Tutor {
	out := make([]models.Tutor, 0, len(tutors))
	for _, tutor := range tutors {
		if matchesFilter(tutor, opts) {
			out = append(out, tutor)
		}
	}
	return out
}

func matchesFilter(tutor models.Tutor, opts models.FilterOptions) bool {
	if opts.Subject != "" && !tutor.TeachesSubject(opts.Subject) {
		return false
	}
	if opts.Location != "" && tutor.Location != opts.Location {
		return false
	}
	if opts.MinPrice != nil && tutor.HourlyRate < *opts.MinPrice {
		return false
	}
	if opts.MaxPrice != nil && tutor.HourlyRate > *opts.MaxPrice {
		return false
	}
	if opts.MinRating != nil && tutor.Rating < *opts.MinRating {
		return false
	}
	if len(opts.Availability) > 0 && !tutor.Availability.HasAnySlot(opts.Availability) {
		return false
	}
	return true
}

// SearchTutors restricts the list to tutors whose name or any subject
// contains the term, case-insensitively. A blank term is the identity.
// Result order is input order; there is no ranking.
func SearchTutors(tutors []models.Tutor, term string) []models.Tutor {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return tutors
	}
	needle := strings.ToLower(trimmed)

	out := make([]models.Tutor, 0, len(tutors))
	for _, tutor := range tutors {
		if matchesSearch(tutor, needle) {
			out = append(out, tutor)
		}
	}
	return out
}

func matchesSearch(tutor models.Tutor, needle string) bool {
	if strings.Contains(strings.ToLower(tutor.Name), needle) {
		return true
	}
	for _, subject := range tutor.Subjects {
		if strings.Contains(strings.ToLower(subject), needle) {
			return true
		}
	}
	return false
}

type directoryRepository interface {
	List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, int, error)
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
}

type directoryReviewReader interface {
	ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error)
}

const directoryCachePattern = "directory:list:*"

// DirectoryService serves the public tutor directory: cached filtered
// listings and full profile detail.
type DirectoryService struct {
	repo    directoryRepository
	reviews directoryReviewReader
	cache   *CacheService
	logger  *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(repo directoryRepository, reviews directoryReviewReader, cache *CacheService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{repo: repo, reviews: reviews, cache: cache, logger: logger}
}

type cachedListing struct {
	Tutors []models.Tutor `json:"tutors"`
	Total  int            `json:"total"`
}

// List returns tutors matching the filter plus pagination data. The SQL
// layer narrows the candidate set; the pure engines above make the final
// call so filter semantics stay in one place.
func (s *DirectoryService) List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	key := directoryCacheKey(filter, page, size)
	var cached cachedListing
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Tutors, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.Total}, nil
	}

	tutors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutors")
	}

	tutors = SearchTutors(FilterTutors(tutors, filter.FilterOptions), filter.Search)

	if err := s.cache.Set(ctx, key, cachedListing{Tutors: tutors, Total: total}, 0); err != nil {
		s.logger.Warn("failed to cache directory listing", zap.Error(err))
	}

	return tutors, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a full tutor profile with reviews.
func (s *DirectoryService) Get(ctx context.Context, id string) (*models.TutorDetail, error) {
	tutor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}

	reviews, err := s.reviews.ListByTutor(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviews")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	return &models.TutorDetail{Tutor: *tutor, Reviews: reviews}, nil
}

// InvalidateListings drops all cached directory pages. Called after a
// review changes a tutor's rating.
func (s *DirectoryService) InvalidateListings(ctx context.Context) error {
	return s.cache.Invalidate(ctx, directoryCachePattern)
}

func directoryCacheKey(filter models.TutorFilter, page, size int) string {
	return fmt.Sprintf("directory:list:%s|%s|%s|%s|%s|%s|%s|%d|%d",
		filter.Subject,
		filter.Location,
		intKey(filter.MinPrice),
		intKey(filter.MaxPrice),
		floatKey(filter.MinRating),
		slotsKey(filter.Availability),
		strings.ToLower(strings.TrimSpace(filter.Search)),
		page,
		size,
	)
}

// slotsKey canonicalizes the availability labels so listings that
// differ only in label order share a cache entry.
func slotsKey(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func intKey(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func floatKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
