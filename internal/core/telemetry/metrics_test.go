package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestAppMetrics_RecordRemoteCall(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordRemoteCall(ctx, "todo", "GET", "/to-do", 200, 10*time.Millisecond)
	metrics.RecordRemoteCall(ctx, "todo", "GET", "/to-do", 200, 10*time.Millisecond)
	metrics.RecordRemoteCall(ctx, "todo", "GET", "/to-do", 0, time.Millisecond)

	Expect(testutil.ToFloat64(metrics.remoteTotal.WithLabelValues("todo", "GET", "/to-do", "200"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.remoteTotal.WithLabelValues("todo", "GET", "/to-do", "transport_error"))).To(Equal(1.0))
}

func TestAppMetrics_RecordStoreOperation(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordStoreOperation(ctx, "todos", "create", nil)
	metrics.RecordStoreOperation(ctx, "todos", "create", errors.New("boom"))
	metrics.SetCachedTodos(ctx, 3)

	Expect(testutil.ToFloat64(metrics.storeOperations.WithLabelValues("todos", "create", "success"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.storeOperations.WithLabelValues("todos", "create", "failure"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cachedTodos)).To(Equal(3.0))
}

func TestOTELProbe_RecordsThroughMetrics(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(zap.NewNop(), metrics)
	ctx := context.Background()

	ctx, span := probe.StartStoreSpan(ctx, "todos", "fetch", map[string]interface{}{"count": 2})
	probe.RecordStoreOperation(ctx, "todos", "fetch", time.Millisecond, nil)
	probe.RecordCollectionSize(ctx, 2)
	probe.RecordThrottled(ctx, "/suggestions")
	span.End()

	Expect(testutil.ToFloat64(metrics.storeOperations.WithLabelValues("todos", "fetch", "success"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cachedTodos)).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.throttleHits.WithLabelValues("/suggestions"))).To(Equal(1.0))
}

func TestNoOpProbe(t *testing.T) {
	RegisterTestingT(t)

	probe := NewNoOpProbe()
	ctx, span := probe.StartStoreSpan(context.Background(), "todos", "fetch", nil)

	Expect(ctx).ToNot(BeNil())
	Expect(span).ToNot(BeNil())
	Expect(func() {
		span.SetAttributes(map[string]interface{}{"a": 1})
		span.RecordError(errors.New("x"))
		span.End()
	}).ToNot(Panic())
}
