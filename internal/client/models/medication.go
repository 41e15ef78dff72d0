package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay names the slot a schedule belongs to.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Noon    TimeOfDay = "noon"
	Evening TimeOfDay = "evening"
	Night   TimeOfDay = "night"
	Custom  TimeOfDay = "custom"
)

func (t TimeOfDay) Valid() bool {
	switch t {
	case Morning, Noon, Evening, Night, Custom:
		return true
	}
	return false
}

// Schedule binds a medication to a recurring wall-clock time.
type Schedule struct {
	ID               int64     `json:"id"`
	Medication       int64     `json:"medication"`
	TimeOfDay        TimeOfDay `json:"time_of_day"`
	TimeOfDayDisplay string    `json:"time_of_day_display,omitempty"`
	ScheduledTime    string    `json:"scheduled_time"`
	IsActive         bool      `json:"is_active"`
}

var ErrBadClock = errors.New("scheduled time must be HH:MM or HH:MM:SS")

// Clock parses ScheduledTime.
func (s Schedule) Clock() (hour, minute int, err error) {
	return ParseClock(s.ScheduledTime)
}

// ParseClock accepts "HH:MM" and "HH:MM:SS".
func ParseClock(v string) (hour, minute int, err error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, perr := time.Parse(layout, v); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, v)
}

// Medication is a prescribed item with its ordered schedules.
type Medication struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Dosage            string     `json:"dosage"`
	PrescriptionImage string     `json:"prescription_image,omitempty"`
	IsActive          bool       `json:"is_active"`
	Schedules         []Schedule `json:"schedules"`
	GroupID           *int64     `json:"group_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Clone deep-copies m so cached values never alias caller memory.
func (m Medication) Clone() Medication {
	c := m
	if m.Schedules != nil {
		c.Schedules = append([]Schedule(nil), m.Schedules...)
	}
	if m.GroupID != nil {
		id := *m.GroupID
		c.GroupID = &id
	}
	return c
}

// MedicationGroup bundles medications taken together (e.g. one prescription).
type MedicationGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MedicationPatch is a partial update; nil fields are left alone by the server.
type MedicationPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Dosage      *string `json:"dosage,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

var (
	ErrEmptyPatch   = errors.New("patch changes nothing")
	ErrNameRequired = errors.New("medication name is required")
)

func (p MedicationPatch) Validate() error {
	if p.Name == nil && p.Description == nil && p.Dosage == nil && p.IsActive == nil {
		return ErrEmptyPatch
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ScheduleInput is one schedule in a create request.
type ScheduleInput struct {
	TimeOfDay     TimeOfDay `json:"time_of_day"`
	ScheduledTime string    `json:"scheduled_time"`
}

// MedicationInput is the create request body.
type MedicationInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Dosage      string          `json:"dosage,omitempty"`
	IsActive    bool            `json:"is_active"`
	Schedules   []ScheduleInput `json:"schedules_input,omitempty"`
	GroupID     *int64          `json:"group_id,omitempty"`
}

func (in MedicationInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	for i, s := range in.Schedules {
		if !s.TimeOfDay.Valid() {
			return fmt.Errorf("schedule %d: unknown time of day %q", i, s.TimeOfDay)
		}
		if _, _, err := ParseClock(s.ScheduledTime); err != nil {
			return fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	return nil
}
