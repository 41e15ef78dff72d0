package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medisync/internal/client/store"
)

// Today shows today's doses. When the server cannot be reached a
// placeholder schedule is shown together with the error.
func (a *App) Today(ctx context.Context) error {
	err := a.store.FetchTodayLogs(ctx)
	st := a.store.Snapshot()
	if err != nil {
		a.store.ClearError()
		fmt.Fprintln(a.out, st.Error+"; showing a placeholder schedule")
	}
	printLogs(a.out, st.TodayLogs)
	return nil
}

// Take records one or more doses.
func (a *App) Take(ctx context.Context, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 1 {
		err = a.store.TakeMedication(ctx, ids[0])
	} else {
		err = a.store.BatchTakeMedications(ctx, ids)
	}
	return a.reportTake(len(ids), err)
}

// TakeAll records every pending dose of today.
func (a *App) TakeAll(ctx context.Context) error {
	ids := a.store.Snapshot().Pending()
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "Nothing pending. Run 'today' to refresh the list.")
		return nil
	}
	return a.reportTake(len(ids), a.store.BatchTakeMedications(ctx, ids))
}

func (a *App) reportTake(n int, err error) error {
	a.store.ClearError()
	switch {
	case errors.Is(err, store.ErrUnconfirmed):
		fmt.Fprintf(a.out, "Recorded %d dose(s) locally; the server has not confirmed yet. Run 'resync' later.\n", n)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(a.out, "Recorded %d dose(s)\n", n)
	return nil
}

// Resync re-sends the doses the server has not confirmed.
func (a *App) Resync(ctx context.Context) error {
	before := len(a.store.Snapshot().Unconfirmed)
	if before == 0 {
		fmt.Fprintln(a.out, "Everything is confirmed")
		return nil
	}
	err := a.store.ResyncUnconfirmed(ctx)
	left := len(a.store.Snapshot().Unconfirmed)
	fmt.Fprintf(a.out, "Confirmed %d of %d dose(s)\n", before-left, before)
	return err
}

func (a *App) Alerts(ctx context.Context) error {
	if err := a.store.FetchAlerts(ctx); err != nil {
		return a.storeError(err)
	}
	printAlerts(a.out, a.store.Snapshot().Alerts)
	return nil
}
