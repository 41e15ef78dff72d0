// Package store is the client's cache of server state and the only writer
// to it. Actions are safe to call from concurrent goroutines; the lock is
// held for single field writes only, never across a network call, so the
// last action to finish wins for every field it touches.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/session"
	"github.com/dmitrijs2005/medisync/internal/logging"
)

// API is the remote surface the store drives. *api.Client implements it.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (models.AuthResult, error)
	Me(ctx context.Context) (models.User, error)
	Medications(ctx context.Context) ([]models.Medication, error)
	CreateMedication(ctx context.Context, in models.MedicationInput) (models.Medication, error)
	UpdateMedication(ctx context.Context, id int64, patch models.MedicationPatch) (models.Medication, error)
	DeleteMedication(ctx context.Context, id int64) error
	TodayLogs(ctx context.Context) ([]models.AdherenceLog, error)
	TakeLog(ctx context.Context, logID int64) (models.AdherenceLog, error)
	BatchTake(ctx context.Context, logIDs []int64) error
	Alerts(ctx context.Context) ([]models.Alert, error)
	MedicationGroups(ctx context.Context) ([]models.MedicationGroup, error)
	CreateMedicationGroup(ctx context.Context, name string) (models.MedicationGroup, error)
	DeleteMedicationGroup(ctx context.Context, id int64) error
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now for taken timestamps and placeholder data.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	api    API
	creds  session.CredentialStore
	logger logging.Logger
	now    func() time.Time

	mu          sync.Mutex
	state       State
	inFlight    int
	unconfirmed map[int64]struct{}
	subs        map[int]chan State
	nextSub     int
}

func New(api API, creds session.CredentialStore, opts ...Option) *Store {
	s := &Store{
		api:         api,
		creds:       creds,
		logger:      logging.Discard(),
		now:         time.Now,
		state:       newState(),
		unconfirmed: map[int64]struct{}{},
		subs:        map[int]chan State{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the cache.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe delivers a snapshot after every change. A slow reader only sees
// the latest state. cancel closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// Medication looks up a cached medication.
func (s *Store) Medication(id int64) (models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.state.Medications {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return models.Medication{}, ErrNotFound
}

// Log looks up one of today's cached log entries.
func (s *Store) Log(id int64) (models.AdherenceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.state.TodayLogs {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return models.AdherenceLog{}, ErrNotFound
}

// update applies fn under the lock and notifies subscribers.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	s.publishLocked(s.snapshotLocked())
}

func (s *Store) snapshotLocked() State {
	out := s.state.clone()
	out.IsLoading = s.inFlight > 0
	out.Unconfirmed = make([]int64, 0, len(s.unconfirmed))
	for id := range s.unconfirmed {
		out.Unconfirmed = append(out.Unconfirmed, id)
	}
	slices.Sort(out.Unconfirmed)
	return out
}

func (s *Store) publishLocked(st State) {
	for _, ch := range s.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		// Replace the stale pending snapshot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// begin marks an action in flight and clears the shared error slot.
func (s *Store) begin(coll Collection) {
	s.update(func(st *State) {
		s.inFlight++
		st.Error = ""
		if coll != "" {
			st.Status[coll] = StatusLoading
		}
	})
}

func (s *Store) end() {
	s.update(func(*State) { s.inFlight-- })
}

// fail publishes msg into the shared error slot.
func (s *Store) fail(ctx context.Context, coll Collection, msg string, err error) {
	s.logger.Warn(ctx, msg, "error", err)
	s.update(func(st *State) {
		st.Error = msg
		if coll != "" {
			st.Status[coll] = StatusError
		}
	})
}
