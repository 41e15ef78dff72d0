package models

import "time"

// LogStatus is the adherence state of one scheduled dose.
type LogStatus string

const (
	StatusPending LogStatus = "pending"
	StatusTaken   LogStatus = "taken"
	StatusMissed  LogStatus = "missed"
	StatusSkipped LogStatus = "skipped"
)

// AdherenceLog is one "medication X due at T" occurrence. The server creates
// them; the client only moves pending ones to taken (see MarkTaken). Missed
// and skipped are assigned by the server and only displayed here.
type AdherenceLog struct {
	ID               int64      `json:"id"`
	Schedule         int64      `json:"schedule"`
	MedicationName   string     `json:"medication_name"`
	MedicationDosage string     `json:"medication_dosage"`
	GroupID          *int64     `json:"group_id"`
	GroupName        *string    `json:"group_name"`
	TimeOfDay        TimeOfDay  `json:"time_of_day"`
	TimeOfDayDisplay string     `json:"time_of_day_display"`
	ScheduledAt      time.Time  `json:"scheduled_datetime"`
	TakenAt          *time.Time `json:"taken_datetime"`
	Status           LogStatus  `json:"status"`
	StatusDisplay    string     `json:"status_display"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Placeholder entries are shown while the server is unreachable and
	// never exist there.
	Placeholder bool `json:"-"`
}

// MarkTaken is the only client-side transition. TakenAt is set together
// with the status so TakenAt != nil holds exactly when Status is taken.
func (l *AdherenceLog) MarkTaken(at time.Time) {
	l.Status = StatusTaken
	l.StatusDisplay = "Taken"
	l.TakenAt = &at
	l.UpdatedAt = at
}

// Consistent reports whether the taken_at/status invariant holds.
func (l AdherenceLog) Consistent() bool {
	return (l.TakenAt != nil) == (l.Status == StatusTaken)
}

func (l AdherenceLog) Clone() AdherenceLog {
	c := l
	if l.TakenAt != nil {
		t := *l.TakenAt
		c.TakenAt = &t
	}
	if l.GroupID != nil {
		id := *l.GroupID
		c.GroupID = &id
	}
	if l.GroupName != nil {
		n := *l.GroupName
		c.GroupName = &n
	}
	return c
}
