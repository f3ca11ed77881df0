package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
)

type mockReviewRepo struct {
	reviews []models.Review
}

func (m *mockReviewRepo) ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range m.reviews {
		if r.TutorID == tutorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ExistsByTutorAndStudent(ctx context.Context, tutorID, studentID string) (bool, error) {
	for _, r := range m.reviews {
		if r.TutorID == tutorID && r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = "new-review"
	}
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *mockReviewRepo) AggregateByTutor(ctx context.Context, tutorID string) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.TutorID == tutorID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type mockReviewTutorRepo struct {
	*mockTutorReader
	updatedRating float64
	updatedCount  int
}

func (m *mockReviewTutorRepo) UpdateRating(ctx context.Context, id string, rating float64, totalReviews int) error {
	m.updatedRating = rating
	m.updatedCount = totalReviews
	return nil
}

type mockUserReader struct {
	users map[string]models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type mockListingInvalidator struct {
	calls int
}

func (m *mockListingInvalidator) InvalidateListings(ctx context.Context) error {
	m.calls++
	return nil
}

func newReviewService(repo *mockReviewRepo, tutors *mockReviewTutorRepo, invalidator *mockListingInvalidator) *ReviewService {
	users := &mockUserReader{users: map[string]models.User{
		"student-1": {ID: "student-1", FullName: "Ali Hassan", Avatar: "https://example.com/ali.jpg"},
		"student-2": {ID: "student-2", FullName: "Hira Shah"},
	}}
	return NewReviewService(repo, tutors, users, invalidator, validator.New(), zap.NewNop())
}

func TestReviewServiceCreateRecomputesAggregate(t *testing.T) {
	repo := &mockReviewRepo{reviews: []models.Review{
		{ID: "r1", TutorID: "1", StudentID: "student-9", Rating: 5},
	}}
	tutors := &mockReviewTutorRepo{mockTutorReader: newMockTutorReader(sampleTutors()...)}
	invalidator := &mockListingInvalidator{}
	svc := newReviewService(repo, tutors, invalidator)

	review, err := svc.Create(context.Background(), "student-1", "1", CreateReviewRequest{Rating: 4, Comment: "Very helpful"})
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", review.StudentName)
	assert.Equal(t, 4, review.Rating)

	// Mean of ratings 5 and 4 over two reviews.
	assert.InDelta(t, 4.5, tutors.updatedRating, 1e-9)
	assert.Equal(t, 2, tutors.updatedCount)
	assert.Equal(t, 1, invalidator.calls)
}

func TestReviewServiceOncePerStudent(t *testing.T) {
	repo := &mockReviewRepo{}
	tutors := &mockReviewTutorRepo{mockTutorReader: newMockTutorReader(sampleTutors()...)}
	svc := newReviewService(repo, tutors, &mockListingInvalidator{})

	_, err := svc.Create(context.Background(), "student-1", "1", CreateReviewRequest{Rating: 5, Comment: "Great"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "student-1", "1", CreateReviewRequest{Rating: 3, Comment: "Changed my mind"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already reviewed")

	// Another student may still review, and another tutor is fair game.
	_, err = svc.Create(context.Background(), "student-2", "1", CreateReviewRequest{Rating: 4, Comment: "Good"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "student-1", "2", CreateReviewRequest{Rating: 5, Comment: "Excellent"})
	require.NoError(t, err)
}

func TestReviewServiceRejectsOutOfRangeRating(t *testing.T) {
	tutors := &mockReviewTutorRepo{mockTutorReader: newMockTutorReader(sampleTutors()...)}
	svc := newReviewService(&mockReviewRepo{}, tutors, &mockListingInvalidator{})

	_, err := svc.Create(context.Background(), "student-1", "1", CreateReviewRequest{Rating: 0, Comment: "bad"})
	require.Error(t, err)
	_, err = svc.Create(context.Background(), "student-1", "1", CreateReviewRequest{Rating: 6, Comment: "too good"})
	require.Error(t, err)
}

func TestReviewServiceUnknownTutor(t *testing.T) {
	tutors := &mockReviewTutorRepo{mockTutorReader: newMockTutorReader(sampleTutors()...)}
	svc := newReviewService(&mockReviewRepo{}, tutors, &mockListingInvalidator{})

	_, err := svc.Create(context.Background(), "student-1", "missing", CreateReviewRequest{Rating: 4, Comment: "ok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tutor not found")
}
