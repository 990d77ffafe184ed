package roster

import (
	"context"
	"time"

	log "github.com/golang/glog"
	"github.com/google/uuid"
)

// Generate runs the C2..C9 pipeline against an already-normalized
// Input: it builds the decision variables and constraints, solves, and
// assembles the response. Input normalization (C1, see Normalize) and the
// external hard-request fetch happen upstream of this call — Input.
// HardRequests is expected to already be populated (or left empty if the
// store was unavailable).
//
// ctx is passed to the solve step, which does not consult it: a client
// disconnect does not cancel an in-flight solve, and the solve runs until
// it finishes or reaches the solver's own time limit.
func Generate(ctx context.Context, in Input) (*Output, error) {
	runID := uuid.New().String()
	start := time.Now()

	log.Infof("[%s] generating schedule: %d nurses, %d days", runID, len(in.Nurses), len(daysBetween(in.StartDate, in.EndDate)))

	m := newModel(in)
	m.buildHardConstraints()
	m.buildPenalties()

	res, err := m.solve(ctx)
	if err != nil {
		log.Errorf("[%s] solve failed: %v", runID, err)
		return nil, err
	}

	sched := m.extractResult(res)
	carryOver := m.evaluateCarryOver(res, sched)

	duration := time.Since(start)
	out := assembleResponse(m, res, sched, carryOver, runID, duration)

	log.Infof("[%s] schedule generated: status %s, penalty %.2f, took %s", runID, out.SolverStatus, out.PenaltyValue, duration)
	return out, nil
}
