package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/medisync/internal/client/metrics"
	"github.com/dmitrijs2005/medisync/internal/client/models"
)

const refreshFlightKey = "refresh"

// recover returns an access token to retry with after a 401 for a request
// that was sent with stale.
func (t *Transport) recover(ctx context.Context, stale string) (string, error) {
	// The refresh outlives the caller that happened to start it: other
	// callers may be waiting on the same flight.
	ctx = context.WithoutCancel(ctx)

	if !t.singleFlight {
		return t.refresh(ctx, stale, false)
	}
	v, err, _ := t.flight.Do(refreshFlightKey, func() (any, error) {
		return t.refresh(ctx, stale, true)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh exchanges the stored refresh token for a new access token. With
// skipRotated set, a request whose token has already been replaced gets the
// current one without another round trip.
func (t *Transport) refresh(ctx context.Context, stale string, skipRotated bool) (string, error) {
	pair, err := t.creds.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}

	if skipRotated && stale != "" && pair.Access != stale {
		if pair.Access == "" {
			// An earlier flight already ended this session.
			return "", ErrNoRefreshToken
		}
		t.metrics.RecordRefresh(metrics.RefreshSkipped)
		return pair.Access, nil
	}

	if pair.Refresh == "" {
		t.metrics.RecordRefresh(metrics.RefreshNoToken)
		t.endSession(ctx, ErrNoRefreshToken)
		return "", ErrNoRefreshToken
	}

	tokens, err := t.requestRefresh(ctx, pair.Refresh)
	if err != nil {
		t.metrics.RecordRefresh(metrics.RefreshFailure)
		t.endSession(ctx, err)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := t.creds.Rotate(ctx, tokens.Access, tokens.Refresh); err != nil {
		t.metrics.RecordRefresh(metrics.RefreshFailure)
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	t.metrics.RecordRefresh(metrics.RefreshSuccess)
	t.logger.Info(ctx, "access token refreshed", "rotated_refresh", tokens.Refresh != "")
	return tokens.Access, nil
}

func (t *Transport) requestRefresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var tokens models.TokenPair

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return tokens, err
	}

	u := t.resolve(t.refreshPath)
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return tokens, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	hresp, err := t.httpClient.Do(hreq)
	if err != nil {
		return tokens, err
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		return tokens, err
	}
	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return tokens, &StatusError{
			Method:     http.MethodPost,
			Path:       t.refreshPath,
			StatusCode: hresp.StatusCode,
			Body:       data,
		}
	}

	if err := json.Unmarshal(data, &tokens); err != nil {
		return tokens, fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.Access == "" {
		return tokens, fmt.Errorf("refresh response carries no access token")
	}
	return tokens, nil
}

// endSession clears the credential pair and notifies the boundary.
func (t *Transport) endSession(ctx context.Context, cause error) {
	if err := t.creds.Clear(ctx); err != nil {
		t.logger.Error(ctx, "clear credentials", "error", err)
	}
	t.metrics.RecordSessionEnded()
	t.logger.Warn(ctx, "session ended", "cause", cause)
	if t.onSessionEnded != nil {
		t.onSessionEnded(ctx)
	}
}
