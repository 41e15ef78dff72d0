package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medisync/internal/buildinfo"
	"github.com/dmitrijs2005/medisync/internal/client/api"
	"github.com/dmitrijs2005/medisync/internal/client/config"
	"github.com/dmitrijs2005/medisync/internal/client/localdb"
	"github.com/dmitrijs2005/medisync/internal/client/metrics"
	"github.com/dmitrijs2005/medisync/internal/client/session"
	"github.com/dmitrijs2005/medisync/internal/client/store"
	"github.com/dmitrijs2005/medisync/internal/client/transport"
	"github.com/dmitrijs2005/medisync/internal/logging"
	"github.com/dmitrijs2005/medisync/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"

	_ "modernc.org/sqlite"
)

const serviceName = "medisync-cli"

type App struct {
	config *config.Config
	store  *store.Store
	creds  session.CredentialStore
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	db              *sql.DB
	metricsServer   *http.Server
	shutdownTracing func(context.Context) error
}

// NewApp wires the local database, credential store, transport and state
// store from c. in and out are the REPL's terminal.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	creds, err := session.NewSQLiteStore(ctx, db, []byte(c.TokenPassphrase))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	tp, shutdownTracing, err := telemetry.Setup(ctx, c.OTelEndpoint, serviceName, buildinfo.Version)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set up tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	a := &App{
		config:          c,
		creds:           creds,
		logger:          logger,
		reader:          bufio.NewReader(in),
		out:             out,
		now:             time.Now,
		db:              db,
		shutdownTracing: shutdownTracing,
	}

	tr, err := transport.New(c.APIBaseURL, creds,
		transport.WithHTTPClient(&http.Client{Timeout: c.HTTPTimeout}),
		transport.WithLogger(logger),
		transport.WithMetrics(collector),
		transport.WithTracerProvider(tp),
		transport.WithRateLimit(c.RateLimit, c.RateBurst),
		transport.WithSingleFlightRefresh(c.SingleFlightRefresh),
		transport.WithSessionEndedHandler(a.onSessionEnded),
	)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.store = store.New(api.New(tr), creds, store.WithLogger(logger))

	if c.MetricsAddr != "" {
		a.metricsServer = newMetricsServer(c.MetricsAddr, reg)
	}
	return a, nil
}

// Run restores a stored session, then runs the REPL until the user exits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	if a.metricsServer != nil {
		go a.serveMetrics(ctx)
	}

	stop := a.watchState(ctx)
	defer stop()

	fmt.Fprintln(a.out, "Welcome to medisync (type 'help' for commands)")
	a.restoreSession(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the database, the metrics listener and the tracer.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Authenticated()
}

// restoreSession loads the profile when tokens survived the last run.
func (a *App) restoreSession(ctx context.Context) {
	pair, err := a.creds.Load(ctx)
	if err != nil {
		a.logger.Warn(ctx, "load stored session", "error", err)
		return
	}
	if pair.Empty() {
		return
	}
	if err := a.store.FetchUser(ctx); err != nil {
		a.store.ClearError()
		return
	}
	if u := a.store.Snapshot().User; u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s\n", u.DisplayName())
	}
}

// onSessionEnded runs when the transport gives up on the stored tokens. A
// rejected login with no session behind it is not announced.
func (a *App) onSessionEnded(ctx context.Context) {
	wasIn := a.isLoggedIn()
	a.store.HandleSessionEnded(ctx)
	if wasIn {
		fmt.Fprintln(a.out, "Your session has ended. Please log in again.")
	}
}

// watchState logs every cache change at debug level.
func (a *App) watchState(ctx context.Context) func() {
	ch, cancel := a.store.Subscribe()
	go func() {
		for st := range ch {
			a.logger.Debug(ctx, "state changed",
				"loading", st.IsLoading,
				"error", st.Error,
				"medications", len(st.Medications),
				"today_logs", len(st.TodayLogs),
				"alerts", len(st.Alerts),
				"unconfirmed", len(st.Unconfirmed),
			)
		}
	}()
	return cancel
}

func (a *App) getStatus() string {
	st := a.store.Snapshot()
	s := ""
	if st.User != nil {
		s = st.User.DisplayName()
	}
	if n := len(st.Unconfirmed); n > 0 {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%d unconfirmed", n)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
