package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	assert.Equal(t, ResultOK, Result(nil))
	assert.Equal(t, ResultError, Result(errors.New("boom")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	before := testutil.ToFloat64(ChainChecks.WithLabelValues("confirmed"))
	ChainChecks.WithLabelValues("confirmed").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ChainChecks.WithLabelValues("confirmed")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "exchange_chain_checks_total")
	assert.Contains(t, string(body), "exchange_ws_clients")
}
