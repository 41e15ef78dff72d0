// Package api maps the remote medication API endpoints onto typed calls
// over the session transport.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/transport"
)

// Endpoint paths, relative to the API base URL.
const (
	PathLogin       = "users/login/"
	PathRegister    = "users/register/"
	PathMe          = "users/me/"
	PathMedications = "medications/"
	PathTodayLogs   = "medications/logs/today/"
	PathBatchTake   = "medications/logs/batch-take/"
	PathAlerts      = "alerts/"
	PathGroups      = "medications/groups/"
)

func medicationPath(id int64) string { return fmt.Sprintf("medications/%d/", id) }
func takePath(logID int64) string    { return fmt.Sprintf("medications/logs/%d/take/", logID) }
func groupPath(id int64) string      { return fmt.Sprintf("medications/groups/%d/", id) }

// Caller is the part of *transport.Transport the client needs.
type Caller interface {
	Call(ctx context.Context, req *transport.Request, out any) error
}

type Client struct {
	c Caller
}

func New(c Caller) *Client {
	return &Client{c: c}
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	var res models.AuthResult
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: PathLogin, Body: creds}, &res)
	return res, err
}

func (c *Client) Register(ctx context.Context, reg models.Registration) (models.AuthResult, error) {
	var res models.AuthResult
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: PathRegister, Body: reg}, &res)
	return res, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: PathMe}, &u)
	return u, err
}

func (c *Client) Medications(ctx context.Context) ([]models.Medication, error) {
	return list[models.Medication](ctx, c.c, PathMedications)
}

func (c *Client) CreateMedication(ctx context.Context, in models.MedicationInput) (models.Medication, error) {
	var m models.Medication
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: PathMedications, Body: in}, &m)
	return m, err
}

// UpdateMedication sends a partial update and returns the server's copy.
func (c *Client) UpdateMedication(ctx context.Context, id int64, patch models.MedicationPatch) (models.Medication, error) {
	var m models.Medication
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPatch, Path: medicationPath(id), Body: patch}, &m)
	return m, err
}

func (c *Client) DeleteMedication(ctx context.Context, id int64) error {
	return c.c.Call(ctx, &transport.Request{Method: http.MethodDelete, Path: medicationPath(id)}, nil)
}

func (c *Client) TodayLogs(ctx context.Context) ([]models.AdherenceLog, error) {
	return list[models.AdherenceLog](ctx, c.c, PathTodayLogs)
}

// TakeLog marks one log entry as taken. The server answers with the updated
// entry; an empty body yields a zero log.
func (c *Client) TakeLog(ctx context.Context, logID int64) (models.AdherenceLog, error) {
	var l models.AdherenceLog
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: takePath(logID)}, &l)
	return l, err
}

// BatchTake marks several log entries as taken in one call. The response
// body is not interpreted.
func (c *Client) BatchTake(ctx context.Context, logIDs []int64) error {
	body := struct {
		LogIDs []int64 `json:"log_ids"`
	}{LogIDs: logIDs}
	return c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: PathBatchTake, Body: body}, nil)
}

func (c *Client) Alerts(ctx context.Context) ([]models.Alert, error) {
	return list[models.Alert](ctx, c.c, PathAlerts)
}

func (c *Client) MedicationGroups(ctx context.Context) ([]models.MedicationGroup, error) {
	return list[models.MedicationGroup](ctx, c.c, PathGroups)
}

func (c *Client) CreateMedicationGroup(ctx context.Context, name string) (models.MedicationGroup, error) {
	var g models.MedicationGroup
	body := map[string]string{"name": name}
	err := c.c.Call(ctx, &transport.Request{Method: http.MethodPost, Path: PathGroups, Body: body}, &g)
	return g, err
}

// DeleteMedicationGroup removes a group; the server deletes its medications
// with it.
func (c *Client) DeleteMedicationGroup(ctx context.Context, id int64) error {
	return c.c.Call(ctx, &transport.Request{Method: http.MethodDelete, Path: groupPath(id)}, nil)
}

// maxPages bounds how many next links a single listing follows.
const maxPages = 50

// list fetches path and follows the envelope's next links, reusing
// their query on the same path.
func list[T any](ctx context.Context, c Caller, path string) ([]T, error) {
	var (
		out   []T
		query url.Values
	)
	for page := 1; ; page++ {
		var raw json.RawMessage
		if err := c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query}, &raw); err != nil {
			return nil, err
		}
		items, next, err := DecodePage[T](raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if out == nil {
			out = items
		} else {
			out = append(out, items...)
		}
		if next == "" {
			return out, nil
		}
		if page >= maxPages {
			return nil, fmt.Errorf("%s: more than %d pages", path, maxPages)
		}

		u, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("%s: next link: %w", path, err)
		}
		query = u.Query()
	}
}
