package telemetry

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewContainer_WithoutExporters(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	c, err := NewContainer(ctx, Config{ServiceName: "todo", Environment: "test"}, nil)
	Expect(err).To(BeNil())
	defer c.Shutdown(ctx)

	Expect(c.MetricsServer).To(BeNil())

	probe := c.Probe()
	probe.RecordThrottled(ctx, "GET /suggestions")

	Expect(testutil.CollectAndCount(c.PrometheusRegistry, "client_throttle_hits_total")).To(Equal(1))

	_, span := probe.StartStoreSpan(ctx, "todo", "FetchTodos", nil)
	span.End()
}
