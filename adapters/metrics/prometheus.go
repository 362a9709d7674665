package metrics

import (
	"context"

	"github.com/layer-3/venmo/ports"
	"github.com/layer-3/venmo/service"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts driver analytics events and lifecycle notifications
type Collector struct {
	events    *prometheus.CounterVec
	lifecycle *prometheus.CounterVec
	inFlight  prometheus.Gauge
}

var (
	_ ports.Analytics                            = (*Collector)(nil)
	_ service.WillPerformAppSwitchObserver       = (*Collector)(nil)
	_ service.DidPerformAppSwitchObserver        = (*Collector)(nil)
	_ service.WillProcessAppSwitchReturnObserver = (*Collector)(nil)
)

// NewCollector creates the driver metrics and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venmo",
			Name:      "analytics_events_total",
			Help:      "Analytics events emitted by the Venmo driver.",
		}, []string{"event"}),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venmo",
			Name:      "lifecycle_notifications_total",
			Help:      "App switch lifecycle notifications.",
		}, []string{"stage"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "venmo",
			Name:      "app_switches_in_flight",
			Help:      "App switches performed and not yet returned.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.events, c.lifecycle, c.inFlight} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Track counts an analytics event
func (c *Collector) Track(_ context.Context, event string) error {
	c.events.WithLabelValues(event).Inc()
	// Abandoned switches never see a return
	if event == service.EventHandleAbandoned {
		c.inFlight.Dec()
	}
	return nil
}

func (c *Collector) WillPerformAppSwitch(*service.Driver) {
	c.lifecycle.WithLabelValues("will_perform_app_switch").Inc()
}

func (c *Collector) DidPerformAppSwitch(*service.Driver) {
	c.lifecycle.WithLabelValues("did_perform_app_switch").Inc()
	c.inFlight.Inc()
}

func (c *Collector) WillProcessAppSwitchReturn(*service.Driver) {
	c.lifecycle.WithLabelValues("will_process_app_switch_return").Inc()
	c.inFlight.Dec()
}
