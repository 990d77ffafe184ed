package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func nonGovNurse(id string, constraints ...PermanentConstraint) Nurse {
	return Nurse{ID: id, Constraints: constraints}
}

func govNurse(id string) Nurse {
	return Nurse{ID: id, IsGovernmentOfficial: true}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const testSolverTimeLimit = 5 * time.Second

// Scenario 1: minimal feasible. 7 non-government nurses, a one-week window,
// no prior schedule, no requests, no holidays. Coverage must match the
// staffing requirement exactly every day, and with no high-priority
// requests at all, every carry-over flag must come back false.
func TestGenerate_MinimalFeasible(t *testing.T) {
	nurses := make([]Nurse, 7)
	for i := range nurses {
		nurses[i] = nonGovNurse(string(rune('A' + i)))
	}

	in := Input{
		Nurses:               nurses,
		StartDate:            date(2024, time.June, 1),
		EndDate:              date(2024, time.June, 7),
		Staffing:             StaffingRequirement{Morning: 2, Afternoon: 3, Night: 2},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}
	if out.SolverStatus != StatusOptimal && out.SolverStatus != StatusFeasible {
		t.Fatalf("Generate() status = %v, want OPTIMAL or FEASIBLE", out.SolverStatus)
	}

	assertDailyCoverage(t, out, in.Staffing)

	for _, nurse := range nurses {
		if out.NextCarryOverFlags[nurse.ID] {
			t.Errorf("NextCarryOverFlags[%s] = true, want false (no monthly requests at all)", nurse.ID)
		}
	}
}

// Scenario 2: a government nurse is pinned off on the weekend, and the lone
// required morning slot each day must be filled by a non-government nurse.
func TestGenerate_GovernmentOnlyOnWeekend(t *testing.T) {
	nurses := []Nurse{govNurse("gov1")}
	for i := 0; i < 6; i++ {
		nurses = append(nurses, nonGovNurse(string(rune('A'+i))))
	}

	in := Input{
		Nurses:               nurses,
		StartDate:            date(2024, time.June, 1), // Saturday
		EndDate:              date(2024, time.June, 2), // Sunday
		Staffing:             StaffingRequirement{Morning: 1, Afternoon: 0, Night: 0},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	gov := out.NurseSchedules["gov1"]
	for _, iso := range out.Days {
		if len(gov.Shifts[iso]) != 0 {
			t.Errorf("government nurse worked on %s, want off (weekend)", iso)
		}
	}

	morningFills := 0
	for nurseID, entry := range out.NurseSchedules {
		if nurseID == "gov1" {
			continue
		}
		for _, shifts := range entry.Shifts {
			for _, s := range shifts {
				if s == ShiftMorning {
					morningFills++
				}
			}
		}
	}
	if morningFills != len(out.Days) {
		t.Errorf("non-government morning fills = %d, want %d (one per day)", morningFills, len(out.Days))
	}
}

// Scenario 3: an approved hard request and a hard no_tuesdays permanent
// constraint must both be honored for the same nurse over a full month.
func TestGenerate_HardDayOffConflict(t *testing.T) {
	nurses := []Nurse{
		nonGovNurse("nurseA", PermanentConstraint{Type: NoTuesdays, Strength: StrengthHard}),
	}
	for i := 0; i < 4; i++ {
		nurses = append(nurses, nonGovNurse(string(rune('B'+i))))
	}

	in := Input{
		Nurses:               nurses,
		StartDate:            date(2024, time.June, 1),
		EndDate:              date(2024, time.June, 30),
		Staffing:             StaffingRequirement{Morning: 1, Afternoon: 1, Night: 1},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		HardRequests:         []HardRequest{{NurseID: "nurseA", Date: date(2024, time.June, 3)}},
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	nurseA := out.NurseSchedules["nurseA"]
	if len(nurseA.Shifts["2024-06-03"]) != 0 {
		t.Error("nurseA worked on the approved hard request day 2024-06-03, want off")
	}

	for _, day := range daysBetween(in.StartDate, in.EndDate) {
		if dayOfWeekMonZero(day) != weekdayOf[NoTuesdays] {
			continue
		}
		iso := day.Format(dateLayout)
		if len(nurseA.Shifts[iso]) != 0 {
			t.Errorf("nurseA worked on Tuesday %s, want off (hard no_tuesdays)", iso)
		}
	}
}

// Scenario 4: a nurse who worked Afternoon on the previous cycle's last day
// must not be scheduled Night on day 0 of the new window.
func TestGenerate_MonthBoundaryAfternoon(t *testing.T) {
	nurses := []Nurse{nonGovNurse("nurseX")}
	for i := 0; i < 4; i++ {
		nurses = append(nurses, nonGovNurse(string(rune('B'+i))))
	}

	in := Input{
		Nurses:    nurses,
		StartDate: date(2024, time.June, 1),
		EndDate:   date(2024, time.June, 5),
		PreviousMonthSchedule: &PriorMonthSnapshot{
			Days: []time.Time{date(2024, time.May, 31)},
			NurseShifts: map[string]map[time.Time][]ShiftKind{
				"nurseX": {date(2024, time.May, 31): {ShiftAfternoon}},
			},
		},
		Staffing:             StaffingRequirement{Morning: 1, Afternoon: 1, Night: 1},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	day0 := out.NurseSchedules["nurseX"].Shifts["2024-06-01"]
	for _, s := range day0 {
		if s == ShiftNight {
			t.Error("nurseX was scheduled Night on day 0 after an Afternoon shift the prior cycle's last day, want no Night")
		}
	}
}

// Scenario 5: staffing makes the Night+Afternoon double shift impossible for
// anyone, so nurseY's high-priority specific-shift request can never be
// met, and the carry-over flag must be raised unconditionally.
func TestGenerate_HighPrioritySpecificShiftUnmetCarriesOver(t *testing.T) {
	nurses := []Nurse{nonGovNurse("nurseY")}
	for i := 0; i < 4; i++ {
		nurses = append(nurses, nonGovNurse(string(rune('B'+i))))
	}

	in := Input{
		Nurses:    nurses,
		StartDate: date(2024, time.June, 1),
		EndDate:   date(2024, time.June, 15),
		Staffing:  StaffingRequirement{Morning: 1, Afternoon: 0, Night: 0},
		MonthlySoftRequests: map[string][]MonthlySoftRequest{
			"nurseY": {
				{
					Type:           RequestSpecificShiftsDay,
					SpecificShifts: []SpecificShiftRequest{{Day: 10, ShiftType: RequestShiftNA}},
					IsHighPriority: true,
				},
			},
		},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	if !out.NextCarryOverFlags["nurseY"] {
		t.Error("NextCarryOverFlags[nurseY] = false, want true (Afternoon/Night both required 0, so the NA request can never be met)")
	}
}

// Scenario 6: a high-priority no_wednesdays request over a window with four
// Wednesdays must raise the carry-over flag exactly when the solved
// schedule gives the nurse fewer Wednesdays off than the occurrence
// threshold table requires.
func TestGenerate_WeekdayCarryOverThreshold(t *testing.T) {
	nurses := []Nurse{nonGovNurse("nurseZ")}
	for i := 0; i < 4; i++ {
		nurses = append(nurses, nonGovNurse(string(rune('B'+i))))
	}

	in := Input{
		Nurses:    nurses,
		StartDate: date(2024, time.June, 1),
		EndDate:   date(2024, time.June, 30), // contains Wednesdays June 5, 12, 19, 26
		Staffing:  StaffingRequirement{Morning: 1, Afternoon: 1, Night: 1},
		MonthlySoftRequests: map[string][]MonthlySoftRequest{
			"nurseZ": {{Type: NoWednesdays, IsHighPriority: true}},
		},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	wednesdays := 0
	off := 0
	for _, day := range daysBetween(in.StartDate, in.EndDate) {
		if dayOfWeekMonZero(day) != weekdayOf[NoWednesdays] {
			continue
		}
		wednesdays++
		if len(out.NurseSchedules["nurseZ"].Shifts[day.Format(dateLayout)]) == 0 {
			off++
		}
	}
	if wednesdays != 4 {
		t.Fatalf("test window has %d Wednesdays, want 4", wednesdays)
	}

	want := off < minOffForOccurrences(wednesdays)
	if out.NextCarryOverFlags["nurseZ"] != want {
		t.Errorf("NextCarryOverFlags[nurseZ] = %v, want %v (%d/%d Wednesdays off, threshold %d)",
			out.NextCarryOverFlags["nurseZ"], want, off, wednesdays, minOffForOccurrences(wednesdays))
	}
}

// TestGenerate_AlgebraicLaws checks the per-nurse count identities spec.md
// §8 requires of every successful schedule.
func TestGenerate_AlgebraicLaws(t *testing.T) {
	nurses := make([]Nurse, 5)
	for i := range nurses {
		nurses[i] = nonGovNurse(string(rune('A' + i)))
	}

	in := Input{
		Nurses:               nurses,
		StartDate:            date(2024, time.June, 1),
		EndDate:              date(2024, time.June, 10),
		Staffing:             StaffingRequirement{Morning: 1, Afternoon: 1, Night: 1},
		MaxConsecutiveShifts: 6,
		TargetOffDays:        8,
		SolverTimeLimit:      testSolverTimeLimit,
	}

	out, err := Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	for nurseID, counts := range out.ShiftsCount {
		if counts.Morning+counts.Afternoon+counts.Night != counts.Total {
			t.Errorf("nurse %s: morning+afternoon+night = %d, want total %d", nurseID, counts.Morning+counts.Afternoon+counts.Night, counts.Total)
		}
		workedDays := len(out.Days) - counts.DaysOff
		if counts.Total-counts.NightAfternoonDouble != workedDays {
			t.Errorf("nurse %s: total-NADouble = %d, want worked days %d", nurseID, counts.Total-counts.NightAfternoonDouble, workedDays)
		}
	}

	assertDailyCoverage(t, out, in.Staffing)
}

func assertDailyCoverage(t *testing.T, out *Output, req StaffingRequirement) {
	t.Helper()

	for _, iso := range out.Days {
		var got StaffingRequirement
		for _, entry := range out.NurseSchedules {
			for _, s := range entry.Shifts[iso] {
				switch s {
				case ShiftMorning:
					got.Morning++
				case ShiftAfternoon:
					got.Afternoon++
				case ShiftNight:
					got.Night++
				}
			}
		}
		if diff := cmp.Diff(req, got); diff != "" {
			t.Errorf("day %s: coverage mismatch (-want +got):\n%s", iso, diff)
		}
	}
}
