package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDefinitionsAreConsistent(t *testing.T) {
	if len(HistogramBounds) != len(HistogramBoundSuffix) || len(HistogramUpperBounds) != len(HistogramBounds)-1 {
		t.Fatal("bucket bound tables disagree")
	}
	seen := map[string]bool{DroppedName: true}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "goaudit_") || !strings.HasSuffix(def.Name, "_total") {
			t.Errorf("unexpected counter name %q", def.Name)
		}
		if seen[def.Name] {
			t.Errorf("duplicate metric name %q", def.Name)
		}
		seen[def.Name] = true
	}
}
