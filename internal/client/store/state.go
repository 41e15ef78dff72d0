package store

import (
	"slices"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

// Collection names one cached value.
type Collection string

const (
	CollUser        Collection = "user"
	CollMedications Collection = "medications"
	CollTodayLogs   Collection = "today_logs"
	CollAlerts      Collection = "alerts"
	CollGroups      Collection = "groups"
)

// Status is the load state of one collection.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// State is a point-in-time copy of the cache. Error and IsLoading are shared
// by every action; Status tracks each collection separately.
type State struct {
	User        *models.User
	Medications []models.Medication
	TodayLogs   []models.AdherenceLog
	Alerts      []models.Alert
	Groups      []models.MedicationGroup

	IsLoading bool
	Error     string

	Status      map[Collection]Status
	Unconfirmed []int64
}

func (s State) Authenticated() bool {
	return s.User != nil
}

// Pending returns the ids of today's entries still waiting to be taken.
func (s State) Pending() []int64 {
	var ids []int64
	for _, l := range s.TodayLogs {
		if l.Status == models.StatusPending {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func newState() State {
	return State{
		Medications: []models.Medication{},
		TodayLogs:   []models.AdherenceLog{},
		Alerts:      []models.Alert{},
		Groups:      []models.MedicationGroup{},
		Status: map[Collection]Status{
			CollUser:        StatusIdle,
			CollMedications: StatusIdle,
			CollTodayLogs:   StatusIdle,
			CollAlerts:      StatusIdle,
			CollGroups:      StatusIdle,
		},
	}
}

func (s State) clone() State {
	out := State{
		IsLoading:   s.IsLoading,
		Error:       s.Error,
		Medications: make([]models.Medication, len(s.Medications)),
		TodayLogs:   make([]models.AdherenceLog, len(s.TodayLogs)),
		Alerts:      slices.Clone(s.Alerts),
		Groups:      slices.Clone(s.Groups),
		Status:      make(map[Collection]Status, len(s.Status)),
		Unconfirmed: slices.Clone(s.Unconfirmed),
	}
	if out.Alerts == nil {
		out.Alerts = []models.Alert{}
	}
	if out.Groups == nil {
		out.Groups = []models.MedicationGroup{}
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	for i, m := range s.Medications {
		out.Medications[i] = m.Clone()
	}
	for i, l := range s.TodayLogs {
		out.TodayLogs[i] = l.Clone()
	}
	for k, v := range s.Status {
		out.Status[k] = v
	}
	return out
}
