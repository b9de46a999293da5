package obsmetrics

import (
	"testing"
	"time"

	"roadrouter/internal/server"
)

func TestInit_ReturnsSingleton(t *testing.T) {
	m := Init()
	if m == nil {
		t.Fatal("Init() should not return nil")
	}
	if m2 := Init(); m != m2 {
		t.Error("Init() should return the same instance")
	}
}

func TestGet(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get() should not return nil")
	}
}

func TestMetrics_QueryFinished(t *testing.T) {
	m := Get()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("QueryFinished panicked: %v", r)
		}
	}()

	m.QueryFinished("q1", server.Diagnostics{
		QueryTime:     5 * time.Millisecond,
		PotentialTime: time.Millisecond,
		QueuePops:     12,
		QueuePushes:   20,
		RelaxedArcs:   30,
	}, true)

	m.QueryFinished("q2", server.Diagnostics{QueryTime: time.Millisecond}, false)
}

func TestMetrics_QueryFinishedWithUpdate(t *testing.T) {
	m := Get()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("QueryFinished with update panicked: %v", r)
		}
	}()

	m.QueryFinished("q3", server.Diagnostics{
		QueryTime:  time.Millisecond,
		UpdateTime: 2 * time.Millisecond,
	}, true)
}

func TestMetrics_PotentialStale(t *testing.T) {
	m := Get()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("PotentialStale panicked: %v", r)
		}
	}()

	m.PotentialStale("q1", true)
	m.PotentialStale("q2", false)
}

func TestMetrics_CustomizationFinished(t *testing.T) {
	m := Get()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("CustomizationFinished panicked: %v", r)
		}
	}()

	m.CustomizationFinished(1, 0.5)
	m.CustomizationFinished(8, 1.2)
}

func TestMetricsLabel(t *testing.T) {
	cases := map[int]string{0: "1", 1: "1", 2: "2-4", 4: "2-4", 5: "5-16", 16: "5-16", 17: "17+", 100: "17+"}
	for n, want := range cases {
		if got := metricsLabel(n); got != want {
			t.Errorf("metricsLabel(%d) = %s, want %s", n, got, want)
		}
	}
}
