// Package server implements the Capacity Server of spec.md §4.5: the query
// driver that runs one time-dependent Dijkstra search guided by a
// configurable potential, reconstructs the path and its per-vertex
// departure times, optionally mutates the graph via Graph.IncreaseWeights,
// and detects potential invalidation requiring re-customization.
package server

import (
	"log/slog"

	"github.com/google/uuid"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
	"roadrouter/internal/logger"
	"roadrouter/internal/potential"
)

// Server drives queries against a fixed capacity graph and CCH topology
// using potential P. The server is generic over P rather than the
// potential.Potential interface directly (spec.md §9 "no dynamic dispatch
// in the Dijkstra inner loop") — P is typically a pointer-receiver type
// such as *potential.CCHPot.
type Server[P potential.Potential] struct {
	net *capgraph.Network
	c   *cch.CCH

	pot         P
	recustomize func() (P, error)

	observer Observer
	log      *slog.Logger
}

// Observer is the optional diagnostics/telemetry collaborator a Server
// reports to; internal/obsmetrics provides an implementation, but the
// server's own signature never names a Prometheus or OTel type directly
// (spec.md §4.5).
type Observer interface {
	QueryFinished(queryID string, diag Diagnostics, found bool)
	PotentialStale(queryID string, recovered bool)
}

// noopObserver is the default Observer when none is configured.
type noopObserver struct{}

func (noopObserver) QueryFinished(string, Diagnostics, bool) {}
func (noopObserver) PotentialStale(string, bool)             {}

// Option configures a Server at construction time.
type Option[P potential.Potential] func(*Server[P])

// WithObserver attaches a diagnostics/telemetry collaborator.
func WithObserver[P potential.Potential](o Observer) Option[P] {
	return func(s *Server[P]) { s.observer = o }
}

// WithRecustomize attaches the callback the server invokes on
// requires_pot_update (spec.md §4.5): it must produce a fresh potential
// instance built from a freshly recomputed customization. Without this
// option, any requires_pot_update is immediately fatal (no retry is
// possible).
func WithRecustomize[P potential.Potential](f func() (P, error)) Option[P] {
	return func(s *Server[P]) { s.recustomize = f }
}

// New builds a Server over a fixed graph, CCH topology, and an
// already-initialized potential instance.
func New[P potential.Potential](net *capgraph.Network, c *cch.CCH, pot P, opts ...Option[P]) *Server[P] {
	s := &Server[P]{net: net, c: c, pot: pot, observer: noopObserver{}, log: logger.WithComponent("server")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newQueryID generates the per-query correlation id used in logs and
// diagnostics (spec.md §4.5 "Query correlation").
func newQueryID() string { return uuid.NewString() }

var errDoubleStale = apperror.NewCritical(apperror.CodeDoubleStale, "potential went stale twice in a row for the same query")
