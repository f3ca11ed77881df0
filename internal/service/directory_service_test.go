package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
)

func sampleAvailability() models.WeeklyAvailability {
	return models.WeeklyAvailability{
		{Day: "Monday", Slots: []string{"10:00 AM", "12:00 PM", "4:00 PM", "6:00 PM"}},
		{Day: "Tuesday", Slots: []string{"11:00 AM", "1:00 PM", "5:00 PM", "7:00 PM"}},
		{Day: "Wednesday", Slots: []string{"10:00 AM", "12:00 PM", "4:00 PM", "6:00 PM"}},
		{Day: "Thursday", Slots: []string{"11:00 AM", "1:00 PM", "5:00 PM", "7:00 PM"}},
		{Day: "Friday", Slots: []string{"10:00 AM", "12:00 PM", "4:00 PM"}},
		{Day: "Saturday", Slots: []string{"10:00 AM", "12:00 PM", "2:00 PM"}},
		{Day: "Sunday", Slots: []string{}},
	}
}

func sampleTutors() []models.Tutor {
	return []models.Tutor{
		{ID: "1", Name: "Ahmed Khan", Subjects: []string{"Mathematics", "Physics"}, Location: "Lahore", HourlyRate: 1500, Rating: 4.8, TotalReviews: 56, Verified: true, Availability: sampleAvailability()},
		{ID: "2", Name: "Fatima Ali", Subjects: []string{"English", "Urdu", "History"}, Location: "Online", HourlyRate: 1200, Rating: 4.5, TotalReviews: 42, Verified: true},
		{ID: "3", Name: "Zain Ahmad", Subjects: []string{"Computer Science", "Mathematics"}, Location: "Karachi", HourlyRate: 2000, Rating: 4.9, TotalReviews: 78, Verified: true},
		{ID: "4", Name: "Sara Malik", Subjects: []string{"Chemistry", "Biology"}, Location: "Islamabad", HourlyRate: 1800, Rating: 4.7, TotalReviews: 35, Verified: false},
		{ID: "5", Name: "Usman Khalid", Subjects: []string{"Economics", "Accounting"}, Location: "Online", HourlyRate: 1600, Rating: 4.4, TotalReviews: 28, Verified: true},
		{ID: "6", Name: "Amna Siddiqui", Subjects: []string{"Physics", "Mathematics"}, Location: "Lahore", HourlyRate: 1500, Rating: 4.6, TotalReviews: 45, Verified: true},
	}
}

func tutorIDs(tutors []models.Tutor) []string {
	ids := make([]string, 0, len(tutors))
	for _, t := range tutors {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestFilterTutorsNoCriteriaIsIdentity(t *testing.T) {
	tutors := sampleTutors()
	out := FilterTutors(tutors, models.FilterOptions{})
	assert.Equal(t, tutorIDs(tutors), tutorIDs(out))
}

func TestFilterTutorsBySubject(t *testing.T) {
	out := FilterTutors(sampleTutors(), models.FilterOptions{Subject: "Physics"})
	assert.Equal(t, []string{"1", "6"}, tutorIDs(out))

	// Matching is exact, not substring.
	out = FilterTutors(sampleTutors(), models.FilterOptions{Subject: "Phys"})
	assert.Empty(t, out)
}

func TestFilterTutorsByLocationExact(t *testing.T) {
	out := FilterTutors(sampleTutors(), models.FilterOptions{Location: "Lahore"})
	assert.Equal(t, []string{"1", "6"}, tutorIDs(out))

	// "Online" is a location value like any other, matched exactly.
	out = FilterTutors(sampleTutors(), models.FilterOptions{Location: "Online"})
	assert.Equal(t, []string{"2", "5"}, tutorIDs(out))

	out = FilterTutors(sampleTutors(), models.FilterOptions{Location: "online"})
	assert.Empty(t, out)
}

func TestFilterTutorsByPriceBand(t *testing.T) {
	minPrice, maxPrice := 1500, 1800
	out := FilterTutors(sampleTutors(), models.FilterOptions{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.Equal(t, []string{"1", "4", "5", "6"}, tutorIDs(out))

	// Bounds are inclusive.
	exact := 2000
	out = FilterTutors(sampleTutors(), models.FilterOptions{MinPrice: &exact, MaxPrice: &exact})
	assert.Equal(t, []string{"3"}, tutorIDs(out))
}

func TestFilterTutorsByMinRating(t *testing.T) {
	minRating := 4.7
	out := FilterTutors(sampleTutors(), models.FilterOptions{MinRating: &minRating})
	assert.Equal(t, []string{"1", "3", "4"}, tutorIDs(out))
}

func TestFilterTutorsByAvailability(t *testing.T) {
	// Only Ahmed Khan declares a schedule; any one matching slot suffices.
	out := FilterTutors(sampleTutors(), models.FilterOptions{Availability: []string{"2:00 PM", "9:00 PM"}})
	assert.Equal(t, []string{"1"}, tutorIDs(out))

	// Tutors without a declared schedule are excluded when the
	// availability criterion is set.
	out = FilterTutors(sampleTutors(), models.FilterOptions{Availability: []string{"9:00 PM"}})
	assert.Empty(t, out)
}

func TestFilterTutorsCombinedCriteria(t *testing.T) {
	minPrice := 1400
	minRating := 4.7
	out := FilterTutors(sampleTutors(), models.FilterOptions{
		Subject:   "Mathematics",
		Location:  "Lahore",
		MinPrice:  &minPrice,
		MinRating: &minRating,
	})
	assert.Equal(t, []string{"1"}, tutorIDs(out))
}

func TestSearchTutorsBlankTermIsIdentity(t *testing.T) {
	tutors := sampleTutors()
	assert.Equal(t, tutorIDs(tutors), tutorIDs(SearchTutors(tutors, "")))
	assert.Equal(t, tutorIDs(tutors), tutorIDs(SearchTutors(tutors, "   ")))
}

func TestSearchTutorsCaseInsensitive(t *testing.T) {
	lower := SearchTutors(sampleTutors(), "ahmed")
	upper := SearchTutors(sampleTutors(), "AHMED")
	assert.Equal(t, tutorIDs(lower), tutorIDs(upper))
	assert.Equal(t, []string{"1"}, tutorIDs(lower))
}

func TestSearchTutorsMatchesNameOrSubject(t *testing.T) {
	// "math" hits Mathematics for tutors 1, 3 and 6 in input order.
	out := SearchTutors(sampleTutors(), "math")
	assert.Equal(t, []string{"1", "3", "6"}, tutorIDs(out))

	// Substring of a name.
	out = SearchTutors(sampleTutors(), "malik")
	assert.Equal(t, []string{"4"}, tutorIDs(out))

	out = SearchTutors(sampleTutors(), "knitting")
	assert.Empty(t, out)
}

func TestSearchAfterFilterComposition(t *testing.T) {
	filtered := FilterTutors(sampleTutors(), models.FilterOptions{Location: "Lahore"})
	out := SearchTutors(filtered, "physics")
	assert.Equal(t, []string{"1", "6"}, tutorIDs(out))
}

type mockDirectoryRepo struct {
	tutors []models.Tutor
	calls  int
}

func (m *mockDirectoryRepo) List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, int, error) {
	m.calls++
	return m.tutors, len(m.tutors), nil
}

func (m *mockDirectoryRepo) FindByID(ctx context.Context, id string) (*models.Tutor, error) {
	for _, tutor := range m.tutors {
		if tutor.ID == id {
			t := tutor
			return &t, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockDirectoryReviews struct {
	reviews map[string][]models.Review
}

func (m *mockDirectoryReviews) ListByTutor(ctx context.Context, tutorID string) ([]models.Review, error) {
	return m.reviews[tutorID], nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestDirectoryServiceListFiltersAndCaches(t *testing.T) {
	repo := &mockDirectoryRepo{tutors: sampleTutors()}
	cacheRepo := &memoryCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, 0, zap.NewNop(), true)
	svc := NewDirectoryService(repo, &mockDirectoryReviews{}, cacheSvc, zap.NewNop())

	filter := models.TutorFilter{FilterOptions: models.FilterOptions{Subject: "Physics"}}
	tutors, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6"}, tutorIDs(tutors))
	assert.Equal(t, 1, pagination.Page)

	// Second identical listing is served from cache.
	tutors, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6"}, tutorIDs(tutors))
	assert.Equal(t, 1, repo.calls)

	// Invalidation forces a fresh read.
	require.NoError(t, svc.InvalidateListings(context.Background()))
	_, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestDirectoryServiceCacheKeyedByAvailability(t *testing.T) {
	repo := &mockDirectoryRepo{tutors: sampleTutors()}
	cacheSvc := NewCacheService(&memoryCacheRepo{}, nil, 0, zap.NewNop(), true)
	svc := NewDirectoryService(repo, &mockDirectoryReviews{}, cacheSvc, zap.NewNop())

	filtered, _, err := svc.List(context.Background(), models.TutorFilter{
		FilterOptions: models.FilterOptions{Availability: []string{"2:00 PM"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tutorIDs(filtered))

	// A listing without the availability criterion must not be served
	// the filtered entry.
	all, _, err := svc.List(context.Background(), models.TutorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, 2, repo.calls)

	// Label order does not fragment the cache.
	_, _, err = svc.List(context.Background(), models.TutorFilter{
		FilterOptions: models.FilterOptions{Availability: []string{"10:00 AM", "2:00 PM"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	_, _, err = svc.List(context.Background(), models.TutorFilter{
		FilterOptions: models.FilterOptions{Availability: []string{"2:00 PM", "10:00 AM"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}

func TestDirectoryServiceListWithoutCache(t *testing.T) {
	repo := &mockDirectoryRepo{tutors: sampleTutors()}
	cacheSvc := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewDirectoryService(repo, &mockDirectoryReviews{}, cacheSvc, zap.NewNop())

	tutors, _, err := svc.List(context.Background(), models.TutorFilter{})
	require.NoError(t, err)
	assert.Len(t, tutors, 6)

	_, _, err = svc.List(context.Background(), models.TutorFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestDirectoryServiceGet(t *testing.T) {
	repo := &mockDirectoryRepo{tutors: sampleTutors()}
	reviews := &mockDirectoryReviews{reviews: map[string][]models.Review{
		"1": {{ID: "r1", TutorID: "1", StudentName: "Ali Hassan", Rating: 5, Comment: "Great tutor"}},
	}}
	cacheSvc := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewDirectoryService(repo, reviews, cacheSvc, zap.NewNop())

	detail, err := svc.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Ahmed Khan", detail.Name)
	assert.Len(t, detail.Reviews, 1)

	// A tutor without reviews still yields an empty slice, never nil.
	detail, err = svc.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.NotNil(t, detail.Reviews)
	assert.Empty(t, detail.Reviews)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tutor not found")
}
