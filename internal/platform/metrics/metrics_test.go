package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecordOperation(t *testing.T) {
	r := NewRegistry()
	r.RecordOperation("transfer", OutcomeSuccess, 30)
	r.RecordOperation("transfer", OutcomeSuccess, 12)
	r.RecordOperation("transfer", OutcomeRejected, 99)

	body := scrape(t, r)
	assert.Contains(t, body, `securepay_ledger_operations_total{operation="transfer",outcome="success"} 2`)
	assert.Contains(t, body, `securepay_ledger_operations_total{operation="transfer",outcome="rejected"} 1`)
	assert.Contains(t, body, `securepay_ledger_amount_total{operation="transfer"} 42`)
}

func TestMiddlewareObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry()

	engine := gin.New()
	engine.Use(r.Middleware())
	engine.GET("/accounts/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/accounts/abc", nil))

	assert.Contains(t, scrape(t, r), `securepay_http_request_duration_seconds_count{method="GET",route="/accounts/:id",status="204"} 1`)
}
