package roster

// These constants mirror the tunables the original scheduling service hard
// coded at module scope. They are not exposed for per-request override; a
// future revision may move some of them into Input if a ward needs to tune
// them independently.
const (
	// MaxConsecutiveSameShift caps how many days in a row a nurse may work
	// the same shift kind before a forced break is required.
	MaxConsecutiveSameShift = 2

	// MaxConsecutiveOffDays caps how many days in a row a nurse may be off.
	MaxConsecutiveOffDays = 2

	// MinOffDaysInWindow is the minimum number of off days required inside
	// any rolling window of WindowSizeForMinOff days. Zero means the
	// constraint is currently a no-op; it is wired through the model so a
	// future deployment can raise it without touching hardconstraints.go.
	MinOffDaysInWindow = 0

	// WindowSizeForMinOff is the width of the rolling window the
	// MinOffDaysInWindow constraint is evaluated over.
	WindowSizeForMinOff = 7
)

// Soft penalty weights. Larger values push the solver harder to avoid the
// corresponding violation; they are relative to each other, not to any
// absolute scale.
const (
	PenaltyOffDayUnderTarget           = 50
	PenaltyEndingMonthAtMaxConsecutive = 35
	PenaltyTotalShiftImbalance         = 30
	PenaltyOffDayImbalance             = 30
	PenaltyShiftTypeImbalance          = 15
	PenaltyPerNADouble                 = 10
	PenaltyNightToMorningTransition    = 5
	PenaltyBaseSoftViolation           = 15

	BonusHighPriority = 15
	BonusCarryOver    = 5
)

// DefaultSolverTimeLimitSeconds is used when Input.SolverTimeLimit is zero.
const DefaultSolverTimeLimitSeconds = 60.0

// DefaultSolverWorkers matches the parallelism the original deployment
// configured for its CP-SAT worker pool.
const DefaultSolverWorkers = 8
