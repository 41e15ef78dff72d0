package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/medisync/internal/common"
	"github.com/go-chi/chi/v5"
)

// fakeAPI is a minimal token-protected API: /api/users/me/ accepts only
// access tokens it has issued, /api/token/refresh/ issues new ones.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  map[string]bool
	validRefresh map[string]bool
	rotate       bool // issue a new refresh token on every refresh
	rejectAll    bool // 401 every protected call, even with a fresh token

	issued       atomic.Int32
	refreshCalls atomic.Int32
	meCalls      atomic.Int32

	// gate holds the first n unauthorized responses until all n arrived,
	// so concurrent callers observe their 401s together.
	gate *gate

	seenMu      sync.Mutex
	seenAuth    []string
	seenReqIDs  []string
	seenParents []string
}

func newFakeAPI(access, refresh []string) *fakeAPI {
	f := &fakeAPI{validAccess: map[string]bool{}, validRefresh: map[string]bool{}}
	for _, a := range access {
		f.validAccess[a] = true
	}
	for _, r := range refresh {
		f.validRefresh[r] = true
	}
	return f
}

func (f *fakeAPI) start(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/users/me/", f.me)
		r.Post("/token/refresh/", f.refresh)
		r.Get("/alerts/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
		})
		r.Post("/echo/", func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusCreated, body)
		})
		r.Get("/open/", func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			writeJSON(w, http.StatusOK, []int{})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) record(r *http.Request) {
	f.seenMu.Lock()
	defer f.seenMu.Unlock()
	f.seenAuth = append(f.seenAuth, r.Header.Get(common.AuthorizationHeader))
	f.seenReqIDs = append(f.seenReqIDs, r.Header.Get(common.RequestIDHeader))
	f.seenParents = append(f.seenParents, r.Header.Get("traceparent"))
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.meCalls.Add(1)
	f.record(r)

	token := strings.TrimPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
	f.mu.Lock()
	ok := f.validAccess[token] && !f.rejectAll
	f.mu.Unlock()

	if !ok {
		if f.gate != nil {
			f.gate.arrive()
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "ann@example.com"})
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)

	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.validRefresh[body.Refresh] {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}

	n := strconv.Itoa(int(f.issued.Add(1)))
	resp := map[string]string{"access": "access-" + n}
	f.validAccess["access-"+n] = true
	if f.rotate {
		resp["refresh"] = "refresh-" + n
		f.validRefresh["refresh-"+n] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type gate struct {
	mu      sync.Mutex
	n       int
	arrived int
	release chan struct{}
}

func newGate(n int) *gate {
	return &gate{n: n, release: make(chan struct{})}
}

func (g *gate) arrive() {
	g.mu.Lock()
	if g.arrived >= g.n {
		g.mu.Unlock()
		return
	}
	g.arrived++
	if g.arrived == g.n {
		close(g.release)
	}
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-time.After(5 * time.Second):
	}
}

// recorder counts transport events.
type recorder struct {
	mu        sync.Mutex
	refreshes map[string]int
	retries   int
	ended     int
	responses int
	netErrors int
}

func newRecorder() *recorder {
	return &recorder{refreshes: map[string]int{}}
}

func (r *recorder) RecordResponse(string, int, time.Duration) {
	r.mu.Lock()
	r.responses++
	r.mu.Unlock()
}

func (r *recorder) RecordNetworkError(string) {
	r.mu.Lock()
	r.netErrors++
	r.mu.Unlock()
}

func (r *recorder) RecordRefresh(outcome string) {
	r.mu.Lock()
	r.refreshes[outcome]++
	r.mu.Unlock()
}

func (r *recorder) RecordRetry() {
	r.mu.Lock()
	r.retries++
	r.mu.Unlock()
}

func (r *recorder) RecordSessionEnded() {
	r.mu.Lock()
	r.ended++
	r.mu.Unlock()
}
