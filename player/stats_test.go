// SPDX-License-Identifier: EPL-2.0

package player

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	p, dev := newTestPlayer(t, nil)

	_, err := p.PlaySynth(&constGen{v: 0.1, frames: -1}, "tone")
	require.NoError(t, err)
	dev.Tick()
	dev.Tick()

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(p)))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 9)

	values := make(map[string]float64)
	for _, mf := range families {
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			values[mf.GetName()] = c.GetValue()
		} else {
			values[mf.GetName()] = m.GetGauge().GetValue()
		}
	}
	assert.InDelta(t, 2, values["audplay_player_periods_total"], 0)
	assert.InDelta(t, 1, values["audplay_player_active_sources"], 0)
	assert.InDelta(t, 1, values["audplay_player_live_sources"], 0)
}
