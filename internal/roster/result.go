package roster

import "github.com/google/or-tools/ortools/sat/go/cpmodel"

// solvedSchedule is the dense per-nurse, per-day shift assignment read back
// from a solveResult, plus the per-nurse tallies the response reports. The
// carry-over evaluator reads the schedule, not these tallies.
type solvedSchedule struct {
	schedule map[string]map[int][]ShiftKind // nurseID -> day index -> sorted shift kinds.
	counts   map[string]NurseCounts
}

// extractResult walks every (nurse, day, shift) decision variable and
// reconstructs the assignment, tallying per-nurse totals exactly as the
// original's result-assembly block does: a missing/failed read of a single
// variable does not abort the whole extraction, it just counts that shift
// as absent.
func (m *model) extractResult(res *solveResult) solvedSchedule {
	out := solvedSchedule{
		schedule: make(map[string]map[int][]ShiftKind, len(m.input.Nurses)),
		counts:   make(map[string]NurseCounts, len(m.input.Nurses)),
	}

	for n, nurse := range m.input.Nurses {
		perDay := make(map[int][]ShiftKind, len(m.days))
		var counts NurseCounts

		for d := range m.days {
			var dayShifts []ShiftKind
			hasMorning := m.solutionBool(res, shiftKey{n, d, ShiftMorning})
			hasAfternoon := m.solutionBool(res, shiftKey{n, d, ShiftAfternoon})
			hasNight := m.solutionBool(res, shiftKey{n, d, ShiftNight})

			if hasMorning {
				dayShifts = append(dayShifts, ShiftMorning)
				counts.Morning++
				counts.Total++
			}
			if hasAfternoon {
				dayShifts = append(dayShifts, ShiftAfternoon)
				counts.Afternoon++
				counts.Total++
			}
			if hasNight {
				dayShifts = append(dayShifts, ShiftNight)
				counts.Night++
				counts.Total++
			}
			if len(dayShifts) == 0 {
				counts.DaysOff++
			}
			if hasNight && hasAfternoon {
				counts.NightAfternoonDouble++
			}
			perDay[d] = dayShifts
		}

		out.schedule[nurse.ID] = perDay
		out.counts[nurse.ID] = counts
	}

	return out
}

func (m *model) solutionBool(res *solveResult, key shiftKey) bool {
	v, ok := m.shifts[key]
	if !ok {
		return false
	}
	return cpmodel.SolutionBooleanValue(res.response, v)
}

func (m *model) solutionInt(res *solveResult, v cpmodel.LinearArgument) int64 {
	return cpmodel.SolutionIntegerValue(res.response, v)
}

// fairnessReport reduces the per-nurse counts of every non-government nurse
// to the min/max/sum the response exposes. All fields are zero when there
// are no non-government nurses, matching the original's `if non_gov_counts`
// guard.
func (sched solvedSchedule) fairnessReport(nonGovIDs []string) FairnessReport {
	if len(nonGovIDs) == 0 {
		return FairnessReport{}
	}
	first := sched.counts[nonGovIDs[0]]
	report := FairnessReport{
		DaysOffMin: first.DaysOff, DaysOffMax: first.DaysOff,
		TotalShiftsMin: first.Total, TotalShiftsMax: first.Total,
		MorningMin: first.Morning, MorningMax: first.Morning,
		AfternoonMin: first.Afternoon, AfternoonMax: first.Afternoon,
		NightMin: first.Night, NightMax: first.Night,
	}
	for _, id := range nonGovIDs {
		c := sched.counts[id]
		report.DaysOffMin = min(report.DaysOffMin, c.DaysOff)
		report.DaysOffMax = max(report.DaysOffMax, c.DaysOff)
		report.TotalShiftsMin = min(report.TotalShiftsMin, c.Total)
		report.TotalShiftsMax = max(report.TotalShiftsMax, c.Total)
		report.MorningMin = min(report.MorningMin, c.Morning)
		report.MorningMax = max(report.MorningMax, c.Morning)
		report.AfternoonMin = min(report.AfternoonMin, c.Afternoon)
		report.AfternoonMax = max(report.AfternoonMax, c.Afternoon)
		report.NightMin = min(report.NightMin, c.Night)
		report.NightMax = max(report.NightMax, c.Night)
		report.TotalNADoubles += c.NightAfternoonDouble
	}
	return report
}
