package models

import (
	"time"

	"github.com/lib/pq"
)

// LocationOnline is the location value marking a remote-only tutor.
// In-person sessions cannot be booked with such tutors.
const LocationOnline = "Online"

// Tutor represents a service-provider profile offering subjects at an
// hourly rate (PKR). Name and avatar are joined from the owning user.
type Tutor struct {
	ID             string             `db:"id" json:"id"`
	UserID         string             `db:"user_id" json:"-"`
	Name           string             `db:"name" json:"name"`
	Avatar         string             `db:"avatar" json:"avatar"`
	Subjects       pq.StringArray     `db:"subjects" json:"subjects"`
	Location       string             `db:"location" json:"location"`
	HourlyRate     int                `db:"hourly_rate" json:"hourlyRate"`
	Rating         float64            `db:"rating" json:"rating"`
	TotalReviews   int                `db:"total_reviews" json:"totalReviews"`
	Verified       bool               `db:"is_verified" json:"isVerified"`
	About          string             `db:"about" json:"about"`
	Qualifications pq.StringArray     `db:"qualifications" json:"qualifications,omitempty"`
	Experience     *string            `db:"experience" json:"experience,omitempty"`
	Education      *string            `db:"education" json:"education,omitempty"`
	Availability   WeeklyAvailability `db:"availability" json:"availability,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"-"`
}

// TeachesSubject reports whether the tutor offers the given subject.
// Matching is exact.
func (t Tutor) TeachesSubject(subject string) bool {
	for _, s := range t.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// TutorDetail is the full tutor view including reviews.
type TutorDetail struct {
	Tutor
	Reviews []Review `json:"reviews"`
}

// Default price band offered by the directory filters.
const (
	DefaultMinPrice = 500
	DefaultMaxPrice = 5000
)

// FilterOptions is the criteria bundle used to narrow a tutor list.
// Nil pointer fields and empty strings mean "not set".
type FilterOptions struct {
	Subject      string
	Location     string
	MinPrice     *int
	MaxPrice     *int
	MinRating    *float64
	Availability []string
}

// DefaultFilterOptions returns the bounded defaults presented by the
// directory (price band 500-5000 PKR, any rating).
func DefaultFilterOptions() FilterOptions {
	minPrice := DefaultMinPrice
	maxPrice := DefaultMaxPrice
	minRating := 0.0
	return FilterOptions{
		MinPrice:  &minPrice,
		MaxPrice:  &maxPrice,
		MinRating: &minRating,
	}
}

// TutorFilter captures the full listing criteria: filter options,
// free-text search term and pagination.
type TutorFilter struct {
	FilterOptions
	Search   string
	Page     int
	PageSize int
}
