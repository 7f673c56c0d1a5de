package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day stored at UTC midnight. It accepts "2006-01-02" or
// RFC3339 input and always serializes as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf converts a wall-clock instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	return CalendarDay(t.UTC())
}

// CalendarDay keeps the calendar day as written in t's own offset.
func CalendarDay(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DatePtr converts a nullable database date into an optional Date.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := CalendarDay(*t)
	return &d
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		*d = CalendarDay(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("date %q: expected YYYY-MM-DD or RFC3339", raw)
	}
	*d = CalendarDay(t)
	return nil
}
