package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWorkflow(t *testing.T) {
	before := testutil.ToFloat64(WorkflowOperations.WithLabelValues("accept_proposal", "ok"))
	RecordWorkflow("accept_proposal", "ok")
	after := testutil.ToFloat64(WorkflowOperations.WithLabelValues("accept_proposal", "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordReconciledSkipsZero(t *testing.T) {
	before := testutil.ToFloat64(ReconciledRows.WithLabelValues("orphan_proposals"))
	RecordReconciled("orphan_proposals", 0)
	RecordReconciled("orphan_proposals", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(ReconciledRows.WithLabelValues("orphan_proposals")))
}

func TestMiddlewareLabelsSurviveMixedTraffic(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Get("/mixed/items", ok)
	app.Post("/mixed/items", ok)
	app.Delete("/mixed/items/:id", ok)
	app.Patch("/mixed/items/:id", ok)

	requests := []struct{ method, path string }{
		{http.MethodGet, "/mixed/items"},
		{http.MethodPost, "/mixed/items"},
		{http.MethodDelete, "/mixed/items/1"},
		{http.MethodPatch, "/mixed/items/2"},
	}
	for i := 0; i < 25; i++ {
		for _, r := range requests {
			resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil), -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		}
	}

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	valid := map[string]bool{"GET": true, "POST": true, "DELETE": true, "PATCH": true}
	seen := map[string]bool{}
	for _, mf := range families {
		if mf.GetName() != "kampus_http_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if !strings.HasPrefix(labels["route"], "/mixed") {
				continue
			}
			assert.True(t, valid[labels["method"]], "unexpected method label %q", labels["method"])
			seen[labels["method"]+" "+labels["route"]] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"GET /mixed/items":        true,
		"POST /mixed/items":       true,
		"DELETE /mixed/items/:id": true,
		"PATCH /mixed/items/:id":  true,
	}, seen)
}
