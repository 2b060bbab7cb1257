package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := m.gatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestCollectors(t *testing.T) {
	games := 2
	m := New(func() int { return games })

	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.IncMessagesReceived("LayCard")
	m.IncMessagesReceived("LayCard")
	m.IncMessagesReceived("JoinGame")
	m.TrickResolved()
	m.GameFinished()
	games = 5

	fams := gather(t, m)
	assert.Equal(t, 1.0, fams["wizard_online_players"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 5.0, fams["wizard_active_games"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, fams["wizard_tricks_resolved_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, fams["wizard_games_finished_total"].GetMetric()[0].GetCounter().GetValue())

	byType := map[string]float64{}
	for _, metric := range fams["wizard_messages_received_total"].GetMetric() {
		byType[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"LayCard": 2, "JoinGame": 1}, byType)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.TrickResolved()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wizard_tricks_resolved_total 1")
	assert.Contains(t, string(body), "wizard_active_games 0")
}
