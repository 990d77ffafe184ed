package roster

import "time"

// priorState is the boundary condition a non-government nurse carries into
// day 0 of the new window, derived from the previous cycle's solved
// schedule. The empty state from emptyPriorState (no previous schedule, or
// a government nurse) means "was off", which imposes no constraint on day 0.
type priorState struct {
	lastDayShifts      []ShiftKind
	consecutiveShifts  int
	wasOffLastDay      bool
	lastShiftTypeCount map[ShiftKind]int
}

func emptyPriorState() priorState {
	return priorState{wasOffLastDay: true, lastShiftTypeCount: map[ShiftKind]int{}}
}

func hasShift(shifts []ShiftKind, kind ShiftKind) bool {
	for _, s := range shifts {
		if s == kind {
			return true
		}
	}
	return false
}

// derivePriorStates computes one priorState per nurse. Government nurses
// always get the empty state: their day-0 schedule is pinned by the
// weekend/holiday rule regardless of what they worked last cycle.
func derivePriorStates(in Input, nurses []Nurse, nonGovIndices []int) map[int]priorState {
	states := make(map[int]priorState, len(nurses))
	for n := range nurses {
		states[n] = emptyPriorState()
	}
	if in.PreviousMonthSchedule == nil {
		return states
	}
	for _, n := range nonGovIndices {
		states[n] = derivePriorState(nurses[n].ID, *in.PreviousMonthSchedule)
	}
	return states
}

// derivePriorState walks the previous window's days in reverse to find the
// nurse's trailing run of worked days and, for each shift kind, the
// trailing run of that specific kind, mirroring the Python reference's
// reverse scan of `prev_days_iso`.
func derivePriorState(nurseID string, prev PriorMonthSnapshot) priorState {
	state := emptyPriorState()
	if len(prev.Days) == 0 {
		return state
	}
	byDay, ok := prev.NurseShifts[nurseID]
	if !ok {
		return state
	}

	lastDay := prev.Days[len(prev.Days)-1]
	lastShifts := byDay[lastDay]
	state.lastDayShifts = append([]ShiftKind(nil), lastShifts...)
	state.wasOffLastDay = len(lastShifts) == 0

	consecutive := 0
	for i := len(prev.Days) - 1; i >= 0; i-- {
		shifts := byDay[prev.Days[i]]
		if len(shifts) == 0 {
			break
		}
		consecutive += len(shifts)
	}
	state.consecutiveShifts = consecutive

	for _, kind := range AllShiftKinds {
		count := 0
		for i := len(prev.Days) - 1; i >= 0; i-- {
			shifts := byDay[prev.Days[i]]
			if hasShift(shifts, kind) {
				count++
			} else {
				break
			}
		}
		state.lastShiftTypeCount[kind] = count
	}

	return state
}

// lastDayISO formats the snapshot's last day as RFC3339, or "" when there
// is none. Nothing in the package calls it; it is kept separate from the
// state derivation so that function stays a pure reduction over the snapshot.
func lastDayISO(prev *PriorMonthSnapshot) string {
	if prev == nil || len(prev.Days) == 0 {
		return ""
	}
	return prev.Days[len(prev.Days)-1].Format(time.RFC3339)
}
