package roster

import (
	"testing"
	"time"
)

func TestDerivePriorState_NoPreviousSchedule(t *testing.T) {
	got := derivePriorState("n1", PriorMonthSnapshot{})
	want := emptyPriorState()

	if got.wasOffLastDay != want.wasOffLastDay || got.consecutiveShifts != want.consecutiveShifts {
		t.Errorf("derivePriorState() with empty snapshot = %+v, want %+v", got, want)
	}
}

func TestDerivePriorState_TrailingRun(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2024, 4, 1+offset, 0, 0, 0, 0, time.UTC)
	}
	days := []time.Time{day(0), day(1), day(2), day(3)}

	prev := PriorMonthSnapshot{
		Days: days,
		NurseShifts: map[string]map[time.Time][]ShiftKind{
			"n1": {
				day(0): {ShiftMorning},
				day(1): nil,
				day(2): {ShiftNight},
				day(3): {ShiftNight, ShiftAfternoon},
			},
		},
	}

	got := derivePriorState("n1", prev)

	if got.wasOffLastDay {
		t.Error("derivePriorState() wasOffLastDay = true, want false (last day has shifts)")
	}
	if got.consecutiveShifts != 3 {
		t.Errorf("derivePriorState() consecutiveShifts = %d, want 3 (days 2 and 3, since day 1 is off)", got.consecutiveShifts)
	}
	if got.lastShiftTypeCount[ShiftNight] != 2 {
		t.Errorf("derivePriorState() lastShiftTypeCount[Night] = %d, want 2", got.lastShiftTypeCount[ShiftNight])
	}
	if got.lastShiftTypeCount[ShiftMorning] != 0 {
		t.Errorf("derivePriorState() lastShiftTypeCount[Morning] = %d, want 0 (last day has no Morning)", got.lastShiftTypeCount[ShiftMorning])
	}
}

func TestDerivePriorStates_GovernmentNursesAlwaysEmpty(t *testing.T) {
	in := Input{
		PreviousMonthSchedule: &PriorMonthSnapshot{
			Days: []time.Time{time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
			NurseShifts: map[string]map[time.Time][]ShiftKind{
				"gov1": {time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC): {ShiftNight}},
			},
		},
	}
	nurses := []Nurse{{ID: "gov1", IsGovernmentOfficial: true}}

	states := derivePriorStates(in, nurses, nil)
	if !states[0].wasOffLastDay {
		t.Error("derivePriorStates() gave a government nurse a non-empty prior state, want always empty")
	}
}
