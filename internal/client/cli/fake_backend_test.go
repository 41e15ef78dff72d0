package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/common"
	"github.com/go-chi/chi/v5"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// backend is an in-memory medication API. Requests must carry "Bearer good"
// except login and register.
type backend struct {
	mu sync.Mutex

	meds      []models.Medication
	groups    []models.MedicationGroup
	logs      []models.AdherenceLog
	alerts    []models.Alert
	nextID    int64
	failLogs  bool
	failTakes bool
	taken     []int64
	calls     []string
}

func newBackend() *backend {
	return &backend{
		nextID: 10,
		meds: []models.Medication{{
			ID: 1, Name: "Aspirin", Dosage: "100mg", IsActive: true,
			Schedules: []models.Schedule{{ID: 1, Medication: 1, TimeOfDay: models.Morning, ScheduledTime: "08:00:00"}},
		}},
		logs: []models.AdherenceLog{
			{ID: 1, MedicationName: "Aspirin", Status: models.StatusPending, ScheduledAt: testNow},
			{ID: 2, MedicationName: "Aspirin", Status: models.StatusPending, ScheduledAt: testNow.Add(time.Hour)},
		},
		alerts: []models.Alert{{ID: 1, AlertType: models.AlertWarning, Status: models.AlertSent, Title: "Missed dose", ScheduledAt: testNow}},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) start(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				b.calls = append(b.calls, req.Method+" "+req.URL.Path)
				b.mu.Unlock()
				next.ServeHTTP(w, req)
			})
		})

		r.Post("/users/login/", b.login)
		r.Post("/users/register/", b.register)
		r.Post("/token/refresh/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireToken)
			r.Get("/users/me/", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, annUser())
			})
			r.Get("/medications/", b.listMeds)
			r.Post("/medications/", b.createMed)
			r.Patch("/medications/{id}/", b.patchMed)
			r.Delete("/medications/{id}/", b.deleteMed)
			r.Get("/medications/groups/", b.listGroups)
			r.Post("/medications/groups/", b.createGroup)
			r.Delete("/medications/groups/{id}/", b.deleteGroup)
			r.Get("/medications/logs/today/", b.today)
			r.Post("/medications/logs/{id}/take/", b.take)
			r.Post("/medications/logs/batch-take/", b.batchTake)
			r.Get("/alerts/", func(w http.ResponseWriter, _ *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				writeJSON(w, http.StatusOK, map[string]any{"count": len(b.alerts), "results": b.alerts})
			})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.AuthorizationHeader) != common.BearerPrefix+"good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func annUser() models.User {
	return models.User{ID: 7, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", Role: models.RoleSenior}
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Email != "ann@example.com" || in.Password != "pw" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResult{User: annUser(), Tokens: models.TokenPair{Access: "good", Refresh: "r1"}})
}

func (b *backend) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Email == "taken@example.com" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"user with this email already exists."}})
		return
	}
	u := models.User{ID: 8, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Role: in.Role, PhoneNumber: in.PhoneNumber}
	writeJSON(w, http.StatusCreated, models.AuthResult{User: u, Tokens: models.TokenPair{Access: "good", Refresh: "r1"}})
}

func (b *backend) listMeds(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.meds)
}

func (b *backend) createMed(w http.ResponseWriter, r *http.Request) {
	var in models.MedicationInput
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	m := models.Medication{ID: b.nextID, Name: in.Name, Dosage: in.Dosage, Description: in.Description, IsActive: in.IsActive}
	for i, s := range in.Schedules {
		m.Schedules = append(m.Schedules, models.Schedule{ID: int64(i + 100), Medication: m.ID, TimeOfDay: s.TimeOfDay, ScheduledTime: s.ScheduledTime})
	}
	b.meds = append(b.meds, m)
	writeJSON(w, http.StatusCreated, m)
}

func (b *backend) patchMed(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var p models.MedicationPatch
	_ = json.NewDecoder(r.Body).Decode(&p)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.meds {
		if b.meds[i].ID != id {
			continue
		}
		if p.Name != nil {
			b.meds[i].Name = *p.Name
		}
		if p.Dosage != nil {
			b.meds[i].Dosage = *p.Dosage
		}
		if p.Description != nil {
			b.meds[i].Description = *p.Description
		}
		if p.IsActive != nil {
			b.meds[i].IsActive = *p.IsActive
		}
		writeJSON(w, http.StatusOK, b.meds[i])
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *backend) deleteMed(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.meds {
		if b.meds[i].ID == id {
			b.meds = append(b.meds[:i], b.meds[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *backend) listGroups(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(b.groups), "next": nil, "results": b.groups})
}

func (b *backend) createGroup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	g := models.MedicationGroup{ID: b.nextID, Name: in.Name, CreatedAt: testNow}
	b.groups = append(b.groups, g)
	writeJSON(w, http.StatusCreated, g)
}

// deleteGroup drops the group, its medications and their logs.
func (b *backend) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.groups, func(g models.MedicationGroup) bool { return g.ID == id })
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	b.groups = slices.Delete(b.groups, idx, idx+1)

	var gone []string
	b.meds = slices.DeleteFunc(b.meds, func(m models.Medication) bool {
		if m.GroupID != nil && *m.GroupID == id {
			gone = append(gone, m.Name)
			return true
		}
		return false
	})
	b.logs = slices.DeleteFunc(b.logs, func(l models.AdherenceLog) bool {
		return slices.Contains(gone, l.MedicationName)
	})
	w.WriteHeader(http.StatusNoContent)
}

func (b *backend) today(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failLogs {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
		return
	}
	writeJSON(w, http.StatusOK, b.logs)
}

func (b *backend) markTaken(id int64) bool {
	for i := range b.logs {
		if b.logs[i].ID == id {
			if b.logs[i].Status == models.StatusTaken {
				return false
			}
			b.logs[i].MarkTaken(testNow)
			b.taken = append(b.taken, id)
			return true
		}
	}
	return false
}

func (b *backend) take(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTakes {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "try later"})
		return
	}
	if !b.markTaken(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Medication already taken"})
		return
	}
	for _, l := range b.logs {
		if l.ID == id {
			writeJSON(w, http.StatusOK, l)
		}
	}
}

func (b *backend) batchTake(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LogIDs []int64 `json:"log_ids"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTakes {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "try later"})
		return
	}
	for _, id := range in.LogIDs {
		b.markTaken(id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
}

func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *backend) takenIDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.taken...)
}
