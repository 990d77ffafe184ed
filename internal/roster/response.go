package roster

import "time"

// dateLayout is the plain YYYY-MM-DD shape the response's days/startDate/
// endDate/shifts keys use, matching Python's date.isoformat().
const dateLayout = "2006-01-02"

// assembleResponse converts the solved schedule, status, and carry-over
// flags into the Output returned to the caller, the Go analogue of the
// original's final `jsonify(...)` payload. RunID and SolveDurationMs are
// additive fields layered on top of every field spec.md §6 names.
func assembleResponse(
	m *model,
	res *solveResult,
	sched solvedSchedule,
	carryOver map[string]bool,
	runID string,
	duration time.Duration,
) *Output {
	daysISO := make([]string, len(m.days))
	for i, d := range m.days {
		daysISO[i] = d.Format(dateLayout)
	}

	schedules := make(map[string]NurseScheduleEntry, len(sched.schedule))
	for _, nurse := range m.input.Nurses {
		perDay := sched.schedule[nurse.ID]
		shifts := make(map[string][]ShiftKind, len(perDay))
		for d, kinds := range perDay {
			shifts[daysISO[d]] = kinds
		}
		schedules[nurse.ID] = NurseScheduleEntry{
			Nurse: NurseSummary{
				ID:                   nurse.ID,
				Prefix:               nurse.Prefix,
				FirstName:            nurse.FirstName,
				LastName:             nurse.LastName,
				IsGovernmentOfficial: nurse.IsGovernmentOfficial,
			},
			Shifts: shifts,
		}
	}

	var nonGovIDs []string
	for _, n := range m.nonGovIndices {
		nonGovIDs = append(nonGovIDs, m.input.Nurses[n].ID)
	}

	objectiveValue := 0.0
	if len(m.objectiveTerms) > 0 {
		objectiveValue = res.response.GetObjectiveValue()
	}

	return &Output{
		NurseSchedules:     schedules,
		ShiftsCount:        sched.counts,
		Days:               daysISO,
		StartDate:          m.input.StartDate.Format(dateLayout),
		EndDate:            m.input.EndDate.Format(dateLayout),
		SolverStatus:       res.status,
		PenaltyValue:       objectiveValue,
		FairnessReport:     sched.fairnessReport(nonGovIDs),
		NextCarryOverFlags: carryOver,
		RunID:              runID,
		SolveDurationMs:    duration.Milliseconds(),
	}
}
