package storage

import (
	"errors"
	"testing"
)

func TestIsBusy(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{errors.New("database table is locked"), true},
		{errors.New("no such table: widgets"), false},
	}
	for _, tc := range cases {
		if got := isBusy(tc.err); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.want, got)
		}
	}
}

func TestMemoryProviders(t *testing.T) {
	var recorded []string
	providers := NewMemoryProviders(WithMetricsCollector(collectorFunc(func(op string, _ map[string]string) {
		recorded = append(recorded, op)
	})))
	if providers.Widgets == nil || providers.Transaction == nil || providers.Metrics == nil {
		t.Fatalf("expected providers to be wired")
	}
	providers.Metrics.Record("widgets.save", nil)
	if len(recorded) != 1 {
		t.Fatalf("expected collector to receive records")
	}
}

type collectorFunc func(string, map[string]string)

func (f collectorFunc) Record(op string, labels map[string]string) { f(op, labels) }
