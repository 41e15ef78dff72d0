package models

import "time"

// AlertType escalates reminder < warning < emergency.
type AlertType string

const (
	AlertReminder  AlertType = "reminder"
	AlertWarning   AlertType = "warning"
	AlertEmergency AlertType = "emergency"
)

// Severity orders alert types; unknown types rank 0.
func (t AlertType) Severity() int {
	switch t {
	case AlertReminder:
		return 1
	case AlertWarning:
		return 2
	case AlertEmergency:
		return 3
	}
	return 0
}

// AlertStatus is the delivery state. It does not depend on severity.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertSent      AlertStatus = "sent"
	AlertCancelled AlertStatus = "cancelled"
	AlertFailed    AlertStatus = "failed"
)

// Alert is read-only on the client.
type Alert struct {
	ID               int64       `json:"id"`
	User             int64       `json:"user"`
	Recipient        *int64      `json:"recipient"`
	MedicationLog    *int64      `json:"medication_log"`
	MedicationName   string      `json:"medication_name"`
	AlertType        AlertType   `json:"alert_type"`
	AlertTypeDisplay string      `json:"alert_type_display"`
	Status           AlertStatus `json:"status"`
	StatusDisplay    string      `json:"status_display"`
	Title            string      `json:"title"`
	Message          string      `json:"message"`
	ScheduledAt      time.Time   `json:"scheduled_at"`
	SentAt           *time.Time  `json:"sent_at"`
	CreatedAt        time.Time   `json:"created_at"`
}
