package roster

import "testing"

func TestMinOffForOccurrences(t *testing.T) {
	testCases := []struct {
		occurrences int
		want        int
	}{
		{occurrences: 0, want: 0},
		{occurrences: 1, want: 1},
		{occurrences: 2, want: 2},
		{occurrences: 3, want: 2},
		{occurrences: 4, want: 3},
		{occurrences: 5, want: 4},
		{occurrences: 30, want: 4},
	}

	for _, test := range testCases {
		if got := minOffForOccurrences(test.occurrences); got != test.want {
			t.Errorf("minOffForOccurrences(%d) = %d, want %d", test.occurrences, got, test.want)
		}
	}
}

func TestGotRequestedShift(t *testing.T) {
	testCases := []struct {
		name      string
		dayShifts []ShiftKind
		code      RequestShiftCode
		want      bool
	}{
		{name: "morning match", dayShifts: []ShiftKind{ShiftMorning}, code: RequestShiftMorning, want: true},
		{name: "morning mismatch", dayShifts: []ShiftKind{ShiftAfternoon}, code: RequestShiftMorning, want: false},
		{name: "NA double satisfied", dayShifts: []ShiftKind{ShiftNight, ShiftAfternoon}, code: RequestShiftNA, want: true},
		{name: "NA double missing one leg", dayShifts: []ShiftKind{ShiftNight}, code: RequestShiftNA, want: false},
		{name: "off day never satisfies", dayShifts: nil, code: RequestShiftMorning, want: false},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if got := gotRequestedShift(test.dayShifts, test.code); got != test.want {
				t.Errorf("gotRequestedShift(%v, %v) = %v, want %v", test.dayShifts, test.code, got, test.want)
			}
		})
	}
}

func TestShiftKindCount(t *testing.T) {
	totals := solvedTotals{morning: 3, afternoon: 5, night: 7, naDouble: 2}

	testCases := []struct {
		ct   ConstraintType
		want int
	}{
		{ct: NoMorningShifts, want: 3},
		{ct: NoAfternoonShifts, want: 5},
		{ct: NoNightShifts, want: 7},
		{ct: NoNightAfternoonDouble, want: 2},
		{ct: NoMondays, want: 0},
	}

	for _, test := range testCases {
		if got := shiftKindCount(totals, test.ct); got != test.want {
			t.Errorf("shiftKindCount(totals, %v) = %d, want %d", test.ct, got, test.want)
		}
	}
}

func TestIsWeekdayType(t *testing.T) {
	if !isWeekdayType(NoMondays) {
		t.Error("isWeekdayType(NoMondays) = false, want true")
	}
	if isWeekdayType(NoMorningShifts) {
		t.Error("isWeekdayType(NoMorningShifts) = true, want false")
	}
}
