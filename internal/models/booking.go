package models

import "time"

// BookingStatus is the lifecycle state of a booked session.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Terminal reports whether no further status transitions are allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Valid reports whether the status is a known lifecycle state.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// SessionType distinguishes online from in-person sessions.
type SessionType string

const (
	SessionOnline   SessionType = "online"
	SessionInPerson SessionType = "in-person"
)

// AllowedDurations are the bookable session lengths in minutes.
var AllowedDurations = []int{60, 90, 120}

// Booking represents a scheduled session between a student and a tutor.
type Booking struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"-"`
	TutorID     string        `db:"tutor_id" json:"-"`
	Date        time.Time     `db:"session_date" json:"date"`
	TimeSlot    string        `db:"time_slot" json:"time"`
	Duration    int           `db:"duration" json:"duration"`
	Subject     string        `db:"subject" json:"subject"`
	SessionType SessionType   `db:"session_type" json:"sessionType"`
	Notes       string        `db:"notes" json:"notes"`
	TotalPrice  int           `db:"total_price" json:"totalPrice"`
	Status      BookingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"-"`
	UpdatedAt   time.Time     `db:"updated_at" json:"-"`
}

// BookingParty identifies the counterparty shown in a booking list.
type BookingParty struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// BookingView is a booking enriched with counterparty info. Students see
// the tutor; tutors see the student.
type BookingView struct {
	Booking
	Tutor   *BookingParty `json:"tutor,omitempty"`
	Student *BookingParty `json:"student,omitempty"`
}
