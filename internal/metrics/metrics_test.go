package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	// Recording through every helper must not panic after Init.
	IncClaim("claimed")
	IncClaim("already_claimed")
	IncPage("completed")
	IncInvalidURL()
	IncLedgerError()
	ObserveFetchDuration(120 * time.Millisecond)
	SetFrontierEntries(42)
	ObserveRateLimitDelay("x.edu", 50*time.Millisecond)
}

func TestHandlerServesRegistry(t *testing.T) {
	Init()
	IncClaim("claimed")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "crawler_claims_total")
}
