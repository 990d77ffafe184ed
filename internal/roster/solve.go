package roster

import (
	"context"

	log "github.com/golang/glog"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
)

// solveResult bundles the solver response with the status already mapped
// into our vocabulary, so the caller never has to touch cmpb directly.
type solveResult struct {
	response *cmpb.CpSolverResponse
	status   SolverStatus
}

// solve hands the built model to CP-SAT with a time limit and worker count
// matching the original deployment, and classifies the outcome. Only
// OPTIMAL and FEASIBLE are treated as a usable solution; everything else
// becomes a roster.Error of the appropriate Kind.
func (m *model) solve(ctx context.Context) (*solveResult, error) {
	proto, err := m.builder.Model()
	if err != nil {
		return nil, newError(ModelInvalid, "failed to instantiate CP-SAT model", err)
	}

	timeLimit := m.input.SolverTimeLimit.Seconds()
	if timeLimit <= 0 {
		timeLimit = DefaultSolverTimeLimitSeconds
	}
	params := &sppb.SatParameters{
		MaxTimeInSeconds:  proto64(timeLimit),
		NumWorkers:        proto32(DefaultSolverWorkers),
		LogSearchProgress: protoBool(true),
	}

	log.Infof("starting solver: time limit %.1fs, workers %d", timeLimit, DefaultSolverWorkers)
	response, err := cpmodel.SolveCpModelWithParameters(proto, params)
	if err != nil {
		return nil, newError(InternalError, "solver invocation failed", err)
	}
	log.Infof("solver finished: status %v", response.GetStatus())

	status := classifyStatus(response.GetStatus())
	switch status {
	case StatusOptimal, StatusFeasible:
		return &solveResult{response: response, status: status}, nil
	case StatusInfeasible:
		return nil, newError(Infeasible, "no schedule satisfies every hard constraint (insufficient staffing, conflicting hard requests, or government official rules)", nil)
	case StatusModelInvalid:
		return nil, newError(ModelInvalid, "CP-SAT rejected the model", nil)
	default:
		return nil, newError(Timeout, "solver did not reach a conclusive status within the time limit", nil)
	}
}

func classifyStatus(s cmpb.CpSolverStatus) SolverStatus {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return StatusModelInvalid
	default:
		return StatusUnknown
	}
}

func proto64(v float64) *float64 { return &v }
func proto32(v int32) *int32     { return &v }
func protoBool(v bool) *bool     { return &v }
