package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC3339, zone-less ISO timestamps and bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time value %q", s)
}

func unmarshalTime(data []byte) (time.Time, error) {
	if bytes.Equal(data, []byte("null")) {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTime(s)
}

// Date is a calendar day exchanged as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := unmarshalTime(data)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Time is an instant exchanged as RFC3339; zone-less values are read as UTC.
type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	v, err := unmarshalTime(data)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}
