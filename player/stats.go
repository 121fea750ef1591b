// SPDX-License-Identifier: EPL-2.0

package player

import "github.com/prometheus/client_golang/prometheus"

// Stats is a snapshot of player counters.
type Stats struct {
	// ActiveSources is the number of voices mixed in the last period.
	ActiveSources int
	// LiveSources is the number of ids that have not stopped yet.
	LiveSources     int
	QueuedCommands  int
	QueuedEvents    int
	CachedFiles     int
	Periods         uint64
	Underruns       uint64
	DroppedEvents   uint64
	RejectedSources uint64
	DeviceErrors    uint64
}

func (p *Player) Stats() Stats {
	p.mu.Lock()
	live := len(p.live)
	p.mu.Unlock()

	return Stats{
		ActiveSources:   int(p.stats.active.Load()),
		LiveSources:     live,
		QueuedCommands:  p.mix.cmds.Len(),
		QueuedEvents:    p.mix.events.Len(),
		CachedFiles:     p.cache.len(),
		Periods:         p.stats.periods.Load(),
		Underruns:       p.stats.underruns.Load(),
		DroppedEvents:   p.stats.droppedEvents.Load(),
		RejectedSources: p.stats.rejected.Load(),
		DeviceErrors:    p.stats.deviceErrors.Load(),
	}
}

// Collector exports Stats as prometheus metrics.
type Collector struct {
	p *Player

	active   *prometheus.Desc
	live     *prometheus.Desc
	queued   *prometheus.Desc
	cached   *prometheus.Desc
	periods  *prometheus.Desc
	underrun *prometheus.Desc
	dropped  *prometheus.Desc
	rejected *prometheus.Desc
	devErrs  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(p *Player) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("audplay", "player", name), help, nil, nil)
	}
	return &Collector{
		p:        p,
		active:   desc("active_sources", "Sources mixed in the last period."),
		live:     desc("live_sources", "Sources that have not stopped yet."),
		queued:   desc("queued_commands", "Commands waiting for the render thread."),
		cached:   desc("cached_files", "Decoded files held for reuse."),
		periods:  desc("periods_total", "Periods rendered."),
		underrun: desc("underruns_total", "Periods in which a streamed source ran dry."),
		dropped:  desc("dropped_events_total", "Events dropped because the event queue was full."),
		rejected: desc("rejected_sources_total", "Sources rejected because every voice was in use."),
		devErrs:  desc("device_errors_total", "Periods lost to device errors."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.active, c.live, c.queued, c.cached, c.periods, c.underrun, c.dropped, c.rejected, c.devErrs} {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.p.Stats()
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.ActiveSources))
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.LiveSources))
	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(s.QueuedCommands))
	ch <- prometheus.MustNewConstMetric(c.cached, prometheus.GaugeValue, float64(s.CachedFiles))
	ch <- prometheus.MustNewConstMetric(c.periods, prometheus.CounterValue, float64(s.Periods))
	ch <- prometheus.MustNewConstMetric(c.underrun, prometheus.CounterValue, float64(s.Underruns))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.DroppedEvents))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(s.RejectedSources))
	ch <- prometheus.MustNewConstMetric(c.devErrs, prometheus.CounterValue, float64(s.DeviceErrors))
}
