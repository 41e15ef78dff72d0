package store

import (
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

// PlaceholderLogs is the degraded-mode dataset shown when today's log cannot
// be fetched: two pending doses, one due now and one an hour later. Their ids
// are negative so they can never name a server entry.
func PlaceholderLogs(now time.Time) []models.AdherenceLog {
	entry := func(id int64, name string, at time.Time) models.AdherenceLog {
		return models.AdherenceLog{
			ID:             id,
			MedicationName: name,
			ScheduledAt:    at,
			Status:         models.StatusPending,
			StatusDisplay:  "Pending",
			CreatedAt:      now,
			UpdatedAt:      now,
			Placeholder:    true,
		}
	}
	return []models.AdherenceLog{
		entry(-1, "Blood pressure medication", now),
		entry(-2, "Diabetes medication", now.Add(time.Hour)),
	}
}
