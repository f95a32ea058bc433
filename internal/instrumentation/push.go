package instrumentation

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushEnabled reports whether a Pushgateway is configured.
func (p *Provider) PushEnabled() bool {
	return p.enabled && p.config.PushgatewayURL != ""
}

// Push sends the current contents of the Prometheus registry to the configured
// Pushgateway. One-shot runs call it before exiting, since nothing scrapes them.
// It is a no-op when instrumentation is disabled or no Pushgateway is set.
func (p *Provider) Push(ctx context.Context) error {
	if !p.PushEnabled() {
		return nil
	}
	if !p.PrometheusEnabled() {
		return fmt.Errorf("pushgateway requires the prometheus metrics exporter")
	}

	job := p.config.PushJob
	if job == "" {
		job = p.config.ServiceName
	}

	pusher := push.New(p.config.PushgatewayURL, job).Gatherer(p.registry)
	if p.config.ServiceInstanceID != "" {
		pusher = pusher.Grouping("instance", p.config.ServiceInstanceID)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", p.config.PushgatewayURL, err)
	}

	return nil
}
