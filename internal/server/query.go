package server

import (
	"time"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
)

// Query drives one request end-to-end through the state machine of
// spec.md §4.5: Init, Search, Terminate, Verify, Path-reconstruct, and
// (if update is true) Update. On requires_pot_update it retries once via
// the server's configured Recustomize callback; a second consecutive
// failure is a hard error (spec.md §7 PotentialStale, "surfaced only if a
// second attempt fails").
func (s *Server[P]) Query(from, to capgraph.NodeID, t0 Timestamp, update bool) (Result, error) {
	queryID := newQueryID()
	log := s.log.With("query_id", queryID, "from", from, "to", to, "t0", t0)

	res, err := s.attemptQuery(from, to, t0, update, false)
	if err == nil {
		s.observer.QueryFinished(queryID, res.Diagnostics, res.Found)
		return res, nil
	}
	if apperror.Code(err) != apperror.CodePotentialStale {
		return Result{}, err
	}

	s.observer.PotentialStale(queryID, s.recustomize != nil)
	log.Warn("potential stale, retrying after recustomization")
	if s.recustomize == nil {
		return Result{}, apperror.NewCritical(apperror.CodePotentialStale, "potential stale and no recustomize callback configured")
	}
	newPot, rcErr := s.recustomize()
	if rcErr != nil {
		return Result{}, apperror.Wrap(rcErr, apperror.CodeInvariantViolation, "recustomization failed")
	}
	s.pot = newPot

	res, err = s.attemptQuery(from, to, t0, update, true)
	if err != nil {
		s.observer.PotentialStale(queryID, false)
		return Result{}, err
	}
	s.observer.QueryFinished(queryID, res.Diagnostics, res.Found)
	return res, nil
}

// attemptQuery runs one Init/Search/Terminate/Verify/reconstruct/Update
// pass. secondAttempt being true and verification still failing trips the
// infinite-loop guard (apperror.CodeDoubleStale) rather than requesting yet
// another retry.
func (s *Server[P]) attemptQuery(from, to capgraph.NodeID, t0 Timestamp, update, secondAttempt bool) (Result, error) {
	var diag Diagnostics
	start := time.Now()

	potStart := time.Now()
	if err := s.pot.Init(s.c.Rank[from], s.c.Rank[to], Weight(t0)); err != nil {
		return Result{}, apperror.Wrap(err, apperror.CodeInvariantViolation, "potential init failed")
	}
	diag.PotentialTime = time.Since(potStart)

	search := dijkstra[P](s.net, s.c, s.pot, from, to, t0)
	diag.QueuePops = search.diag.QueuePops
	diag.QueuePushes = search.diag.QueuePushes
	diag.RelaxedArcs = search.diag.RelaxedArcs
	diag.NumPotentialComputations = search.diag.NumPotentialComputations

	var distance Weight
	if search.foundTo {
		distance = Weight(search.toArrival - t0)
	} else {
		distance = Infinity
	}

	verifyOK := s.pot.VerifyResult(distance)
	fromPotential, fromOK := s.pot.Potential(s.c.Rank[from], Weight(t0))
	requiresPotUpdate := !verifyOK || (fromOK && distance < fromPotential)

	if requiresPotUpdate {
		if secondAttempt {
			diag.QueryTime = time.Since(start)
			return Result{Diagnostics: diag}, errDoubleStale
		}
		diag.QueryTime = time.Since(start)
		return Result{Diagnostics: diag}, apperror.New(apperror.CodePotentialStale, "potential verification failed")
	}

	if !search.foundTo {
		diag.QueryTime = time.Since(start)
		return Result{Found: false, Diagnostics: diag}, nil
	}

	nodes, edges := reconstructPath(s.net, search, from, to, t0)
	departures := simulateDepartures(s.net, edges, t0)

	if update {
		if err := s.runUpdate(edges, departures, &diag); err != nil {
			diag.QueryTime = time.Since(start)
			return Result{}, err
		}
	}

	diag.QueryTime = time.Since(start)
	return Result{
		Found:       true,
		Distance:    distance,
		Nodes:       nodes,
		Edges:       edges,
		Departures:  departures,
		Diagnostics: diag,
	}, nil
}

// runUpdate feeds the reconstructed path back into the graph (spec.md §4.5
// step 6). A path carrying an infinite-distance leg is refused rather than
// silently written as a zero-weight update (spec.md §9 Open Question 1).
func (s *Server[P]) runUpdate(edges []capgraph.EdgeID, departures []Timestamp, diag *Diagnostics) error {
	updateStart := time.Now()
	defer func() { diag.UpdateTime = time.Since(updateStart) }()

	for i, e := range edges {
		if s.net.Eval(e, departures[i]) >= Infinity {
			return apperror.NewCritical(apperror.CodeInvariantViolation, "refusing to increase_weights on a path with an infinite-distance leg").
				WithDetails("edge", e)
		}
	}
	return s.net.IncreaseWeights(edges, departures)
}
