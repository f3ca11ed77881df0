package service

import (
	"context"
	"time"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
)

// WizardStep identifies a step of the booking flow.
type WizardStep int

const (
	StepSelectDateTime WizardStep = iota + 1
	StepSessionDetails
	StepConfirm
)

type bookingCreator interface {
	Create(ctx context.Context, studentID, tutorID string, req CreateBookingRequest) (*models.Booking, error)
}

// BookingWizard drives the three-step booking flow for one tutor:
// date/time selection, session details, then confirm and submit.
// Forward transitions are guarded; going back never loses entered
// values. There is no slot locking: two wizards can submit the same
// tutor/date/slot and both bookings are accepted.
type BookingWizard struct {
	tutor     models.Tutor
	studentID string
	creator   bookingCreator

	step        WizardStep
	date        time.Time
	dateChosen  bool
	slots       []string
	timeSlot    string
	duration    int
	subject     string
	sessionType models.SessionType
	notes       string
}

// NewBookingWizard starts a wizard at the date/time step with the
// defaults the booking form presents: 60 minutes, online session, the
// tutor's first subject.
func NewBookingWizard(tutor models.Tutor, studentID string, creator bookingCreator) *BookingWizard {
	w := &BookingWizard{
		tutor:       tutor,
		studentID:   studentID,
		creator:     creator,
		step:        StepSelectDateTime,
		duration:    60,
		sessionType: models.SessionOnline,
	}
	if len(tutor.Subjects) > 0 {
		w.subject = tutor.Subjects[0]
	}
	return w
}

// Step returns the current wizard step.
func (w *BookingWizard) Step() WizardStep {
	return w.step
}

// SelectDate picks a session date and recomputes the offerable slots
// from the tutor's weekly availability. Any previously selected slot is
// cleared, since it may not be offered on the new date.
func (w *BookingWizard) SelectDate(date time.Time) {
	w.date = date
	w.dateChosen = true
	w.slots = w.tutor.Availability.SlotsFor(date)
	w.timeSlot = ""
}

// AvailableSlots returns the slots offerable on the selected date.
func (w *BookingWizard) AvailableSlots() []string {
	return w.slots
}

// SelectTime picks one of the offerable slots.
func (w *BookingWizard) SelectTime(slot string) error {
	for _, s := range w.slots {
		if s == slot {
			w.timeSlot = slot
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "selected time is not offered on this date")
}

// SelectedTime returns the chosen slot label, empty when none is chosen.
func (w *BookingWizard) SelectedTime() string {
	return w.timeSlot
}

// SetDuration picks the session length in minutes.
func (w *BookingWizard) SetDuration(minutes int) error {
	for _, d := range models.AllowedDurations {
		if d == minutes {
			w.duration = minutes
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "duration must be 60, 90 or 120 minutes")
}

// SetSubject picks the session subject.
func (w *BookingWizard) SetSubject(subject string) {
	w.subject = subject
}

// SetSessionType picks online or in-person.
func (w *BookingWizard) SetSessionType(sessionType models.SessionType) {
	w.sessionType = sessionType
}

// SetNotes attaches free-text notes.
func (w *BookingWizard) SetNotes(notes string) {
	w.notes = notes
}

// Next advances to the following step. The transition is guarded; on a
// guard failure a validation error is returned and the step does not
// change.
func (w *BookingWizard) Next() error {
	switch w.step {
	case StepSelectDateTime:
		if !w.dateChosen || w.timeSlot == "" {
			return appErrors.Clone(appErrors.ErrValidation, "select both date and time")
		}
		w.step = StepSessionDetails
		return nil
	case StepSessionDetails:
		if w.subject == "" || !w.tutor.TeachesSubject(w.subject) {
			return appErrors.Clone(appErrors.ErrValidation, "subject must be one the tutor teaches")
		}
		if w.sessionType != models.SessionOnline && w.sessionType != models.SessionInPerson {
			return appErrors.Clone(appErrors.ErrValidation, "select a session type")
		}
		if w.sessionType == models.SessionInPerson && w.tutor.Location == models.LocationOnline {
			return appErrors.Clone(appErrors.ErrValidation, "this tutor only offers online sessions")
		}
		w.step = StepConfirm
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, "no further step")
	}
}

// Back returns to the previous step. All entered values are preserved.
func (w *BookingWizard) Back() {
	if w.step > StepSelectDateTime {
		w.step--
	}
}

// TotalPrice is the session price: hourly rate times the booked
// fraction of an hour.
func (w *BookingWizard) TotalPrice() int {
	return w.tutor.HourlyRate * w.duration / 60
}

// Submit creates the booking from the accumulated state. Only valid on
// the confirm step. A failed submission leaves the wizard untouched so
// the caller may retry.
func (w *BookingWizard) Submit(ctx context.Context) (*models.Booking, error) {
	if w.step != StepConfirm {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking is not ready to submit")
	}

	req := CreateBookingRequest{
		Date:        w.date.Format("2006-01-02"),
		Time:        w.timeSlot,
		Duration:    w.duration,
		Subject:     w.subject,
		SessionType: w.sessionType,
		Notes:       w.notes,
	}
	return w.creator.Create(ctx, w.studentID, w.tutor.ID, req)
}
