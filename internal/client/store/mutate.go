package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/transport"
	"golang.org/x/sync/errgroup"
)

// TakeMedication records a dose. The cached entry becomes taken whether or
// not the server accepted the call; when it did not, the returned error
// wraps ErrUnconfirmed and the entry waits for ResyncUnconfirmed.
// Placeholder entries are only marked locally.
func (s *Store) TakeMedication(ctx context.Context, logID int64) error {
	return s.take(ctx, []int64{logID}, func(ids []int64) error {
		_, err := s.api.TakeLog(ctx, ids[0])
		return err
	})
}

// BatchTakeMedications is TakeMedication for several entries in one call.
func (s *Store) BatchTakeMedications(ctx context.Context, logIDs []int64) error {
	if len(logIDs) == 0 {
		return nil
	}
	return s.take(ctx, logIDs, func(ids []int64) error {
		return s.api.BatchTake(ctx, ids)
	})
}

func (s *Store) take(ctx context.Context, ids []int64, send func(remote []int64) error) error {
	s.begin("")
	defer s.end()

	remote := s.withoutPlaceholders(ids)
	var err error
	if len(remote) > 0 {
		err = send(remote)
	}
	at := s.now()

	s.update(func(st *State) {
		markTaken(st.TodayLogs, ids, at)
		for _, id := range remote {
			if err != nil {
				s.unconfirmed[id] = struct{}{}
			} else {
				delete(s.unconfirmed, id)
			}
		}
		if err != nil {
			st.Error = MsgTake
		}
	})

	if err != nil {
		s.logger.Warn(ctx, MsgTake, "log_ids", remote, "error", err)
		return fmt.Errorf("%w: %w", ErrUnconfirmed, err)
	}
	return nil
}

// withoutPlaceholders drops the ids of cached placeholder entries.
func (s *Store) withoutPlaceholders(ids []int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		idx := slices.IndexFunc(s.state.TodayLogs, func(l models.AdherenceLog) bool { return l.ID == id })
		if idx >= 0 && s.state.TodayLogs[idx].Placeholder {
			continue
		}
		out = append(out, id)
	}
	return out
}

func markTaken(logs []models.AdherenceLog, ids []int64, at time.Time) {
	for i := range logs {
		if slices.Contains(ids, logs[i].ID) {
			logs[i].MarkTaken(at)
		}
	}
}

// ResyncUnconfirmed re-sends every dose the server has not acknowledged.
// Entries the server confirms, reports as already taken, or does not know
// leave the queue.
func (s *Store) ResyncUnconfirmed(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.unconfirmed))
	for id := range s.unconfirmed {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	slices.Sort(ids)

	var errs []error
	for _, id := range ids {
		_, err := s.api.TakeLog(ctx, id)
		switch {
		// The take endpoint answers 400 only for entries that are already taken.
		case err == nil, transport.IsStatus(err, http.StatusBadRequest):
			s.logger.Info(ctx, "dose confirmed", "log_id", id)
		case transport.IsStatus(err, http.StatusNotFound):
			s.logger.Warn(ctx, "dose dropped, entry unknown to the server", "log_id", id)
		default:
			errs = append(errs, fmt.Errorf("log %d: %w", id, err))
			continue
		}
		s.update(func(*State) { delete(s.unconfirmed, id) })
	}
	return errors.Join(errs...)
}

// UpdateMedication applies patch on the server and replaces the cached
// medication with the server's copy. On failure the cache is untouched.
func (s *Store) UpdateMedication(ctx context.Context, id int64, patch models.MedicationPatch) (models.Medication, error) {
	if err := patch.Validate(); err != nil {
		return models.Medication{}, err
	}

	s.begin("")
	defer s.end()

	m, err := s.api.UpdateMedication(ctx, id, patch)
	if err != nil {
		s.fail(ctx, "", MsgUpdateMedication, err)
		return models.Medication{}, err
	}

	s.update(func(st *State) {
		for i := range st.Medications {
			if st.Medications[i].ID == id {
				st.Medications[i] = m.Clone()
			}
		}
	})
	return m, nil
}

// DeleteMedication removes a medication on the server and then from the
// cache. On failure the cache is untouched.
func (s *Store) DeleteMedication(ctx context.Context, id int64) error {
	s.begin("")
	defer s.end()

	if err := s.api.DeleteMedication(ctx, id); err != nil {
		s.fail(ctx, "", MsgDeleteMedication, err)
		return err
	}

	s.update(func(st *State) {
		st.Medications = slices.DeleteFunc(st.Medications, func(m models.Medication) bool {
			return m.ID == id
		})
	})
	return nil
}

// CreateMedication adds a medication and reloads the medication list and
// today's log, which gains entries for the new schedules.
func (s *Store) CreateMedication(ctx context.Context, in models.MedicationInput) (models.Medication, error) {
	if err := in.Validate(); err != nil {
		return models.Medication{}, err
	}

	s.begin("")
	defer s.end()

	m, err := s.api.CreateMedication(ctx, in)
	if err != nil {
		s.fail(ctx, "", MsgCreateMedication, err)
		return models.Medication{}, err
	}

	var g errgroup.Group
	g.Go(func() error { return s.FetchMedications(ctx) })
	g.Go(func() error { return s.FetchTodayLogs(ctx) })
	if err := g.Wait(); err != nil {
		s.logger.Warn(ctx, "refresh after create", "medication_id", m.ID, "error", err)
	}
	return m, nil
}
