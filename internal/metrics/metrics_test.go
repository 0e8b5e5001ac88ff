package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMutation(t *testing.T) {
	m := NewMetrics()

	m.RecordMutation("add", "success")
	m.RecordMutation("add", "success")
	m.RecordMutation("add", "error")

	if got := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("add", "success")); got != 2 {
		t.Errorf("Expected 2 successful adds, got %v", got)
	}
	if got := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("add", "error")); got != 1 {
		t.Errorf("Expected 1 failed add, got %v", got)
	}
}

func TestIndependentRegistries(t *testing.T) {
	// two instances must not collide on registration
	a := NewMetrics()
	b := NewMetrics()

	a.UpdateHierarchyStats(13, 13, 4)
	if got := testutil.ToFloat64(b.DepartmentsTotal); got != 0 {
		t.Errorf("Expected isolated gauge, got %v", got)
	}
	if got := testutil.ToFloat64(a.HierarchyDepth); got != 4 {
		t.Errorf("Expected depth 4, got %v", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	m := NewMetrics()
	m.RecordStoreOperation("save", "success", 5*time.Millisecond)

	if got := testutil.CollectAndCount(m.StoreOperationDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
	if got := testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("save", "success")); got != 1 {
		t.Errorf("Expected 1 save, got %v", got)
	}
}

func TestRunUptimeStops(t *testing.T) {
	m := NewMetrics()
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		m.RunUptime(time.Millisecond, stop)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunUptime did not stop")
	}
	if testutil.ToFloat64(m.ServerUptimeSeconds) <= 0 {
		t.Errorf("Expected uptime to be set")
	}
}
