package store

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

func (s *Store) FetchMedicationGroups(ctx context.Context) error {
	s.begin(CollGroups)
	defer s.end()

	groups, err := s.api.MedicationGroups(ctx)
	if err != nil {
		s.fail(ctx, CollGroups, MsgFetchGroups, err)
		return err
	}
	if groups == nil {
		groups = []models.MedicationGroup{}
	}
	s.update(func(st *State) {
		st.Groups = groups
		st.Status[CollGroups] = StatusReady
	})
	return nil
}

// CreateMedicationGroup adds a group and appends the server's copy to the
// cache.
func (s *Store) CreateMedicationGroup(ctx context.Context, name string) (models.MedicationGroup, error) {
	if strings.TrimSpace(name) == "" {
		return models.MedicationGroup{}, models.ErrNameRequired
	}

	s.begin("")
	defer s.end()

	g, err := s.api.CreateMedicationGroup(ctx, name)
	if err != nil {
		s.fail(ctx, "", MsgCreateGroup, err)
		return models.MedicationGroup{}, err
	}
	s.update(func(st *State) { st.Groups = append(st.Groups, g) })
	return g, nil
}

// DeleteMedicationGroup removes a group on the server. On success the group
// and every cached medication in it leave the cache, and today's log is
// reloaded because its entries went with them. On failure the cache is
// untouched.
func (s *Store) DeleteMedicationGroup(ctx context.Context, id int64) error {
	s.begin("")
	defer s.end()

	if err := s.api.DeleteMedicationGroup(ctx, id); err != nil {
		s.fail(ctx, "", MsgDeleteGroup, err)
		return err
	}

	s.update(func(st *State) {
		st.Medications = slices.DeleteFunc(st.Medications, func(m models.Medication) bool {
			return m.GroupID != nil && *m.GroupID == id
		})
		st.Groups = slices.DeleteFunc(st.Groups, func(g models.MedicationGroup) bool {
			return g.ID == id
		})
	})

	if err := s.FetchTodayLogs(ctx); err != nil {
		s.logger.Warn(ctx, "refresh after group delete", "group_id", id, "error", err)
	}
	return nil
}
