package internaldefs

import (
	goAudit "github.com/MrEthical07/goAudit"
)

// CounterDef names one Emitter counter for exporters.
type CounterDef struct {
	ID   goAudit.MetricID
	Name string
	Help string
}

// HistogramDef names one Emitter histogram for exporters.
type HistogramDef struct {
	ID   goAudit.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goAudit.MetricEventEmitted, Name: "goaudit_event_emitted_total", Help: "Documents handed to Send."},
	{ID: goAudit.MetricEventRejected, Name: "goaudit_event_rejected_total", Help: "Errored documents rejected before delivery."},
	{ID: goAudit.MetricEventDelivered, Name: "goaudit_event_delivered_total", Help: "Events accepted by the sink."},
	{ID: goAudit.MetricDeliveryFailure, Name: "goaudit_delivery_failure_total", Help: "Sink deliveries that returned an error."},
}

var HistogramDefs = []HistogramDef{
	{ID: goAudit.MetricDeliveryLatency, Name: "goaudit_delivery_latency_seconds", Help: "Sink delivery latency histogram."},
}

// DroppedName and DroppedHelp describe the dispatcher backpressure counter.
const (
	DroppedName = "goaudit_event_dropped_total"
	DroppedHelp = "Events dropped because the dispatch buffer was full."
)

// HistogramBounds are the text forms of the bucket upper bounds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bucket bounds in seconds; the last
// bucket is +Inf and implicit.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
