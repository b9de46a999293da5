package server

import "time"

// Diagnostics holds the observable per-query counters of spec.md §4.5.
type Diagnostics struct {
	QueryTime     time.Duration
	PotentialTime time.Duration
	UpdateTime    time.Duration

	QueuePops                int
	QueuePushes              int
	RelaxedArcs              int
	NumPotentialComputations int
}
