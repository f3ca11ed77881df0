package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayAvailability holds the offerable time-slot labels for one weekday.
// A day with no offered slots carries an empty slice, not a missing entry.
type DayAvailability struct {
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

// WeeklyAvailability is a tutor's declared weekly schedule, ordered
// Monday through Sunday. Stored as a jsonb column.
type WeeklyAvailability []DayAvailability

// SlotsFor returns the slot labels offerable on the given calendar date.
// The weekday name is derived from the date and matched exactly against
// the day entries; an absent weekday yields no slots.
func (a WeeklyAvailability) SlotsFor(date time.Time) []string {
	weekday := date.Weekday().String()
	for _, entry := range a {
		if entry.Day == weekday {
			return entry.Slots
		}
	}
	return nil
}

// HasAnySlot reports whether at least one of the given slot labels is
// offered on any day of the week.
func (a WeeklyAvailability) HasAnySlot(labels []string) bool {
	for _, entry := range a {
		for _, slot := range entry.Slots {
			for _, label := range labels {
				if slot == label {
					return true
				}
			}
		}
	}
	return false
}

// Scan implements sql.Scanner for jsonb columns.
func (a *WeeklyAvailability) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported availability column type %T", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(raw, a)
}

// Value implements driver.Valuer for jsonb columns.
func (a WeeklyAvailability) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}
