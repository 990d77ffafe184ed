package roster

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// shiftKey addresses the boolean "nurse n works shift s on day d" variable.
type shiftKey struct {
	nurse int
	day   int
	shift ShiftKind
}

// dayKey addresses a per-(nurse, day) variable such as is-off or the
// consecutive-shift accumulator.
type dayKey struct {
	nurse int
	day   int
}

// objectiveTerm is one (weight, expr) pair folded into the final Minimize
// call. expr is usually a single BoolVar indicator, but fairness penalties
// contribute an IntVar difference instead; both satisfy LinearArgument.
type objectiveTerm struct {
	weight int64
	expr   cpmodel.LinearArgument
}

// model carries every piece of state threaded through the hard-constraint,
// penalty, and extraction passes. It is built once per Generate call and
// discarded after the response is assembled.
type model struct {
	builder *cpmodel.Builder

	input Input
	days  []time.Time

	nurseIndex    map[string]int // nurse ID -> position in input.Nurses / days-on-variable axis.
	nonGovIndices []int
	nonGovPos     map[int]int // nurse index -> position within nonGovIndices / the total* slices.
	isGovernment  []bool

	shifts                map[shiftKey]cpmodel.BoolVar
	isOff                 map[dayKey]cpmodel.BoolVar
	isWorking             map[dayKey]cpmodel.BoolVar
	numShiftsOnDay        map[dayKey]cpmodel.IntVar
	consecutiveShiftCount map[dayKey]cpmodel.IntVar

	nmTransitionPenalties []cpmodel.BoolVar
	objectiveTerms        []objectiveTerm

	priorStates map[int]priorState

	// totals, populated once per non-gov nurse while building the objective
	// (C5) and reused by the carry-over evaluator (C8).
	totalOff   []cpmodel.IntVar
	totalShift []cpmodel.IntVar
	totalM     []cpmodel.IntVar
	totalA     []cpmodel.IntVar
	totalN     []cpmodel.IntVar

	maxConsecutiveShiftsWorked int
}

// newModel allocates the CP-SAT builder and every per-(nurse,day) decision
// variable described in the data model: shifts[n,d,s], isOff/isWorking, and
// the bookkeeping num-shifts-on-day variable that ties them together.
func newModel(in Input) *model {
	m := &model{
		builder:               cpmodel.NewCpModelBuilder(),
		input:                 in,
		nurseIndex:            make(map[string]int, len(in.Nurses)),
		shifts:                make(map[shiftKey]cpmodel.BoolVar),
		isOff:                 make(map[dayKey]cpmodel.BoolVar),
		isWorking:             make(map[dayKey]cpmodel.BoolVar),
		numShiftsOnDay:        make(map[dayKey]cpmodel.IntVar),
		consecutiveShiftCount: make(map[dayKey]cpmodel.IntVar),
	}

	m.days = daysBetween(in.StartDate, in.EndDate)
	m.isGovernment = make([]bool, len(in.Nurses))
	for n, nurse := range in.Nurses {
		m.nurseIndex[nurse.ID] = n
		m.isGovernment[n] = nurse.IsGovernmentOfficial
		if !nurse.IsGovernmentOfficial {
			m.nonGovIndices = append(m.nonGovIndices, n)
		}
	}

	m.nonGovPos = make(map[int]int, len(m.nonGovIndices))
	for i, n := range m.nonGovIndices {
		m.nonGovPos[n] = i
	}

	m.maxConsecutiveShiftsWorked = in.MaxConsecutiveShifts

	numNurses := len(in.Nurses)
	numDays := len(m.days)

	for n := 0; n < numNurses; n++ {
		for d := 0; d < numDays; d++ {
			for _, s := range AllShiftKinds {
				key := shiftKey{nurse: n, day: d, shift: s}
				m.shifts[key] = m.builder.NewBoolVar().WithName(fmt.Sprintf("s_n%d_d%d_s%d", n, d, s))
			}
		}
	}

	for n := 0; n < numNurses; n++ {
		for d := 0; d < numDays; d++ {
			off := m.builder.NewBoolVar().WithName(fmt.Sprintf("off_n%d_d%d", n, d))
			m.isOff[dayKey{n, d}] = off
			m.isWorking[dayKey{n, d}] = off.Not()
		}
	}

	for n := 0; n < numNurses; n++ {
		for d := 0; d < numDays; d++ {
			key := dayKey{n, d}
			count := m.builder.NewIntVar(0, 2).WithName(fmt.Sprintf("nshifts_n%d_d%d", n, d))
			m.numShiftsOnDay[key] = count

			sum := cpmodel.NewLinearExpr()
			for _, s := range AllShiftKinds {
				sum.Add(m.shifts[shiftKey{nurse: n, day: d, shift: s}])
			}
			m.builder.AddEquality(count, sum)
			m.builder.AddGreaterOrEqual(count, cpmodel.NewConstant(1)).OnlyEnforceIf(m.isWorking[key])
			m.builder.AddEquality(count, cpmodel.NewConstant(0)).OnlyEnforceIf(m.isOff[key])
		}
	}

	if m.maxConsecutiveShiftsWorked > 0 {
		for _, n := range m.nonGovIndices {
			for d := 0; d < numDays; d++ {
				m.consecutiveShiftCount[dayKey{n, d}] = m.builder.NewIntVar(0, int64(m.maxConsecutiveShiftsWorked)).
					WithName(fmt.Sprintf("csh_n%d_d%d", n, d))
			}
		}
	}

	return m
}

// daysBetween returns the inclusive calendar-day sequence from start to end,
// normalized to UTC midnight.
func daysBetween(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// dayOfWeekMonZero returns the weekday of t with Monday = 0, matching the
// convention spec.md's no_<weekday> constraint vocabulary uses.
func dayOfWeekMonZero(t time.Time) int {
	wd := int(t.Weekday()) // Sunday = 0
	return (wd + 6) % 7
}
