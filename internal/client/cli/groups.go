package cli

import (
	"context"
	"fmt"
)

func (a *App) Groups(ctx context.Context) error {
	if err := a.store.FetchMedicationGroups(ctx); err != nil {
		return a.storeError(err)
	}
	printGroups(a.out, a.store.Snapshot().Groups)
	return nil
}

func (a *App) AddGroup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Group name", a.out)
	if err != nil {
		return err
	}
	g, err := a.store.CreateMedicationGroup(ctx, name)
	if err != nil {
		return a.storeError(err)
	}
	fmt.Fprintf(a.out, "Added group %s (id %d)\n", g.Name, g.ID)
	return nil
}

// DeleteGroup removes a group together with the medications in it.
func (a *App) DeleteGroup(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.store.DeleteMedicationGroup(ctx, id); err != nil {
		return a.storeError(err)
	}
	fmt.Fprintf(a.out, "Deleted group %d and its medications\n", id)
	return nil
}
