package roster

// solvedTotals is the per-nurse per-shift-kind tally read back from the
// fairness accumulators built in C5, keyed by nurse ID. Only
// non-government nurses have an entry.
type solvedTotals struct {
	morning, afternoon, night, naDouble int
}

// evaluateCarryOver decides, for every nurse, whether an unmet high
// priority request should raise the carry-over flag for their next cycle.
// It is implemented as a pure function over the already-extracted schedule
// and the solved totals, deliberately not reusing any penalty indicator
// variable from C5 (see the design note this mirrors: a request can be
// softly "paid for" by the objective yet still count as unmet here).
func (m *model) evaluateCarryOver(res *solveResult, sched solvedSchedule) map[string]bool {
	totals := m.readSolvedTotals(res)

	flags := make(map[string]bool, len(m.input.Nurses))
	for n, nurse := range m.input.Nurses {
		if m.isGovernment[n] {
			flags[nurse.ID] = false
			continue
		}

		requests := m.input.MonthlySoftRequests[nurse.ID]
		var highPriority []MonthlySoftRequest
		for _, r := range requests {
			if r.IsHighPriority {
				highPriority = append(highPriority, r)
			}
		}
		if len(highPriority) == 0 {
			flags[nurse.ID] = false
			continue
		}

		unmet := false
		for _, req := range highPriority {
			if unmet {
				break
			}
			unmet = m.isRequestUnmet(n, nurse.ID, req, sched, totals)
		}
		flags[nurse.ID] = unmet
	}
	return flags
}

func (m *model) readSolvedTotals(res *solveResult) map[string]solvedTotals {
	totals := make(map[string]solvedTotals, len(m.nonGovIndices))
	for i, n := range m.nonGovIndices {
		nurseID := m.input.Nurses[n].ID
		t := solvedTotals{
			morning:   int(m.solutionInt(res, m.totalM[i])),
			afternoon: int(m.solutionInt(res, m.totalA[i])),
			night:     int(m.solutionInt(res, m.totalN[i])),
		}
		for d := range m.days {
			if m.solutionBool(res, shiftKey{n, d, ShiftNight}) && m.solutionBool(res, shiftKey{n, d, ShiftAfternoon}) {
				t.naDouble++
			}
		}
		totals[nurseID] = t
	}
	return totals
}

// isRequestUnmet applies the rule matching the request's type: the
// specific-shifts request must have every sub-item satisfied; weekday
// requests use the occurrences-in-month threshold table; no_specific_days
// checks the one or two named days directly; the remaining shift-kind
// exclusion requests compare the nurse's solved total against the average
// of their non-government peers.
func (m *model) isRequestUnmet(n int, nurseID string, req MonthlySoftRequest, sched solvedSchedule, totals map[string]solvedTotals) bool {
	switch {
	case req.Type == RequestSpecificShiftsDay:
		return m.specificShiftsUnmet(n, req.SpecificShifts, sched)
	case isWeekdayType(req.Type):
		return m.weekdayRequestUnmet(n, req.Type, sched)
	case req.Type == NoSpecificDays:
		return m.specificDaysUnmet(n, req.Value, sched)
	case req.Type == NoMorningShifts, req.Type == NoAfternoonShifts, req.Type == NoNightShifts, req.Type == NoNightAfternoonDouble:
		return m.shiftKindRequestUnmet(nurseID, req.Type, totals)
	default:
		return false
	}
}

func isWeekdayType(t ConstraintType) bool {
	_, ok := weekdayOf[t]
	return ok
}

func (m *model) specificShiftsUnmet(n int, items []SpecificShiftRequest, sched solvedSchedule) bool {
	if len(items) == 0 {
		return false
	}
	dayOfMonth := make(map[int]int, len(m.days))
	for d, day := range m.days {
		dayOfMonth[day.Day()] = d
	}
	for _, item := range items {
		d, ok := dayOfMonth[item.Day]
		if !ok {
			return true
		}
		if !gotRequestedShift(sched.schedule[m.input.Nurses[n].ID][d], item.ShiftType) {
			return true
		}
	}
	return false
}

func gotRequestedShift(dayShifts []ShiftKind, code RequestShiftCode) bool {
	switch code {
	case RequestShiftMorning:
		return hasShift(dayShifts, ShiftMorning)
	case RequestShiftAfternoon:
		return hasShift(dayShifts, ShiftAfternoon)
	case RequestShiftNight:
		return hasShift(dayShifts, ShiftNight)
	case RequestShiftNA:
		return hasShift(dayShifts, ShiftNight) && hasShift(dayShifts, ShiftAfternoon)
	default:
		return false
	}
}

// minOffForOccurrences is the weekday-threshold table the original uses: a
// nurse asking for a weekday off must get it off at least this many times
// out of the month's occurrences of that weekday.
func minOffForOccurrences(occurrences int) int {
	switch {
	case occurrences <= 0:
		return 0
	case occurrences == 1:
		return 1
	case occurrences == 2, occurrences == 3:
		return 2
	case occurrences == 4:
		return 3
	default:
		return 4
	}
}

func (m *model) weekdayRequestUnmet(n int, t ConstraintType, sched solvedSchedule) bool {
	target := weekdayOf[t]
	occurrences := 0
	daysOff := 0
	for d, day := range m.days {
		if dayOfWeekMonZero(day) != target {
			continue
		}
		occurrences++
		if len(sched.schedule[m.input.Nurses[n].ID][d]) == 0 {
			daysOff++
		}
	}
	if occurrences == 0 {
		return false
	}
	return daysOff < minOffForOccurrences(occurrences)
}

// specificDaysUnmet only evaluates requests naming one or two days, the
// same restriction the original carry-over evaluator imposes (three or
// more named days is silently skipped, even though it still contributed a
// penalty term in C5 — see the design note in DESIGN.md).
func (m *model) specificDaysUnmet(n int, value []int, sched solvedSchedule) bool {
	if len(value) < 1 || len(value) > 2 {
		return false
	}
	dayOfMonth := make(map[int]int, len(m.days))
	for d, day := range m.days {
		dayOfMonth[day.Day()] = d
	}
	nurseID := m.input.Nurses[n].ID
	for _, dayNum := range value {
		d, ok := dayOfMonth[dayNum]
		if !ok {
			continue
		}
		if len(sched.schedule[nurseID][d]) > 0 {
			return true
		}
	}
	return false
}

func (m *model) shiftKindRequestUnmet(nurseID string, t ConstraintType, totals map[string]solvedTotals) bool {
	actual := shiftKindCount(totals[nurseID], t)

	if len(m.nonGovIndices) == 1 {
		return actual > 0
	}

	sum, count := 0, 0
	for _, n := range m.nonGovIndices {
		otherID := m.input.Nurses[n].ID
		if otherID == nurseID {
			continue
		}
		sum += shiftKindCount(totals[otherID], t)
		count++
	}
	if count == 0 {
		return false
	}
	average := float64(sum) / float64(count)
	if average == 0 {
		return actual > 0
	}
	return (float64(actual)/average)*100 > 50.0
}

func shiftKindCount(t solvedTotals, ct ConstraintType) int {
	switch ct {
	case NoMorningShifts:
		return t.morning
	case NoAfternoonShifts:
		return t.afternoon
	case NoNightShifts:
		return t.night
	case NoNightAfternoonDouble:
		return t.naDouble
	default:
		return 0
	}
}
