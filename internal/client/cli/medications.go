package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

func (a *App) Medications(ctx context.Context) error {
	if err := a.store.FetchMedications(ctx); err != nil {
		return a.storeError(err)
	}
	printMedications(a.out, a.store.Snapshot().Medications)
	return nil
}

// AddMedication prompts for a new medication and its daily schedule.
func (a *App) AddMedication(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Medication name", a.out)
	if err != nil {
		return err
	}
	dosage, err := GetSimpleText(a.reader, "Dosage (e.g. 100mg)", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	schedules, err := a.readSchedules()
	if err != nil {
		return err
	}

	in := models.MedicationInput{
		Name:        name,
		Dosage:      dosage,
		Description: description,
		IsActive:    true,
		Schedules:   schedules,
	}
	m, err := a.store.CreateMedication(ctx, in)
	if err != nil {
		return a.storeError(err)
	}
	fmt.Fprintf(a.out, "Added %s (id %d)\n", m.Name, m.ID)
	return nil
}

// readSchedules reads "<time_of_day> <HH:MM>" lines until an empty one.
func (a *App) readSchedules() ([]models.ScheduleInput, error) {
	text, err := GetMultiline(a.reader,
		"Schedules, one per line: <morning|noon|evening|night|custom> <HH:MM>", a.out)
	if err != nil {
		return nil, err
	}

	var out []models.ScheduleInput
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: schedule line %q", ErrUsage, line)
		}
		out = append(out, models.ScheduleInput{
			TimeOfDay:     models.TimeOfDay(strings.ToLower(fields[0])),
			ScheduledTime: fields[1],
		})
	}
	return out, nil
}

// UpdateMedication edits the fields of one medication; empty answers keep
// the current value.
func (a *App) UpdateMedication(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	current, err := a.cachedMedication(ctx, id)
	if err != nil {
		return err
	}

	var patch models.MedicationPatch
	if patch.Name, err = GetOptionalText(a.reader, "Name", current.Name, a.out); err != nil {
		return err
	}
	if patch.Dosage, err = GetOptionalText(a.reader, "Dosage", current.Dosage, a.out); err != nil {
		return err
	}
	if patch.Description, err = GetOptionalText(a.reader, "Description", current.Description, a.out); err != nil {
		return err
	}
	if patch.IsActive, err = GetYesNo(a.reader, fmt.Sprintf("Active [%t]", current.IsActive), a.out); err != nil {
		return err
	}

	m, err := a.store.UpdateMedication(ctx, id, patch)
	if err != nil {
		return a.storeError(err)
	}
	fmt.Fprintf(a.out, "Updated %s\n", m.Name)
	return nil
}

func (a *App) DeleteMedication(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.store.DeleteMedication(ctx, id); err != nil {
		return a.storeError(err)
	}
	fmt.Fprintf(a.out, "Deleted medication %d\n", id)
	return nil
}

// cachedMedication returns the cached medication, loading the list once
// when it is not there.
func (a *App) cachedMedication(ctx context.Context, id int64) (models.Medication, error) {
	if m, err := a.store.Medication(id); err == nil {
		return m, nil
	}
	if err := a.store.FetchMedications(ctx); err != nil {
		return models.Medication{}, a.storeError(err)
	}
	m, err := a.store.Medication(id)
	if err != nil {
		return models.Medication{}, fmt.Errorf("medication %d: %w", id, err)
	}
	return m, nil
}
