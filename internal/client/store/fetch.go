package store

import (
	"context"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

// Fetch actions replace their collection wholesale on success. On failure
// the shared error slot gets the action's message and the error is also
// returned; prior data is kept, except for today's log which falls back to
// PlaceholderLogs.

func (s *Store) FetchUser(ctx context.Context) error {
	s.begin(CollUser)
	defer s.end()

	u, err := s.api.Me(ctx)
	if err != nil {
		s.fail(ctx, CollUser, MsgFetchUser, err)
		return err
	}
	s.update(func(st *State) {
		st.User = &u
		st.Status[CollUser] = StatusReady
	})
	return nil
}

func (s *Store) FetchMedications(ctx context.Context) error {
	s.begin(CollMedications)
	defer s.end()

	meds, err := s.api.Medications(ctx)
	if err != nil {
		s.fail(ctx, CollMedications, MsgFetchMedications, err)
		return err
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	s.update(func(st *State) {
		st.Medications = meds
		st.Status[CollMedications] = StatusReady
	})
	return nil
}

func (s *Store) FetchTodayLogs(ctx context.Context) error {
	s.begin(CollTodayLogs)
	defer s.end()

	logs, err := s.api.TodayLogs(ctx)
	if err != nil {
		s.fail(ctx, CollTodayLogs, MsgFetchTodayLogs, err)
		placeholder := PlaceholderLogs(s.now())
		s.update(func(st *State) { st.TodayLogs = placeholder })
		return err
	}
	if logs == nil {
		logs = []models.AdherenceLog{}
	}
	s.update(func(st *State) {
		st.TodayLogs = logs
		st.Status[CollTodayLogs] = StatusReady
	})
	return nil
}

func (s *Store) FetchAlerts(ctx context.Context) error {
	s.begin(CollAlerts)
	defer s.end()

	alerts, err := s.api.Alerts(ctx)
	if err != nil {
		s.fail(ctx, CollAlerts, MsgFetchAlerts, err)
		return err
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	s.update(func(st *State) {
		st.Alerts = alerts
		st.Status[CollAlerts] = StatusReady
	})
	return nil
}
