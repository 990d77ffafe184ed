package roster

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// buildPenalties adds every soft-violation indicator to the objective:
// soft-strength permanent constraints, monthly soft requests (including the
// request_specific_shifts_on_days OR-aggregation), and the fairness/shape
// penalties computed over per-nurse totals. It finishes by calling
// Minimize on the weighted sum, matching the original's single
// `objective_penalty_terms` accumulator followed by one `model.Minimize`.
func (m *model) buildPenalties() {
	m.addSoftPermanentConstraints()
	m.addMonthlySoftRequests()
	m.computeNonGovTotals()
	m.addTargetOffDayPenalty()
	m.addImbalancePenalties()
	m.addNADoublePenalty()
	m.addNightToMorningTransitionPenalty()
	m.addEndsMonthAtMaxPenalty()

	if len(m.objectiveTerms) == 0 {
		log.Infof("no penalty terms in objective (no non-government nurses or no applicable requests)")
		return
	}
	obj := cpmodel.NewLinearExpr()
	for _, term := range m.objectiveTerms {
		obj.AddTerm(term.expr, term.weight)
	}
	m.builder.Minimize(obj)
	log.Infof("minimizing objective with %d penalty terms", len(m.objectiveTerms))
}

func (m *model) addSoftPermanentConstraints() {
	count := 0
	for _, n := range m.nonGovIndices {
		for _, c := range m.input.Nurses[n].Constraints {
			if c.Strength != StrengthSoft {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Errorf("recovered while applying soft permanent constraint %q for nurse %s: %v", c.Type, m.input.Nurses[n].ID, r)
					}
				}()
				vars := m.softPermanentIndicators(n, c)
				for _, v := range vars {
					m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: PenaltyBaseSoftViolation, expr: v})
					count++
				}
			}()
		}
	}
	log.Infof("applied %d soft permanent penalty terms for non-government nurses", count)
}

// softPermanentIndicators returns the boolean indicators whose truth means
// a soft permanent constraint of type c.Type is violated on some day.
func (m *model) softPermanentIndicators(n int, c PermanentConstraint) []cpmodel.BoolVar {
	var vars []cpmodel.BoolVar
	if weekday, ok := weekdayOf[c.Type]; ok {
		for d, day := range m.days {
			if dayOfWeekMonZero(day) == weekday {
				vars = append(vars, m.isWorking[dayKey{n, d}])
			}
		}
		return vars
	}
	switch c.Type {
	case NoMorningShifts:
		for d := range m.days {
			vars = append(vars, m.shifts[shiftKey{n, d, ShiftMorning}])
		}
	case NoAfternoonShifts:
		for d := range m.days {
			vars = append(vars, m.shifts[shiftKey{n, d, ShiftAfternoon}])
		}
	case NoNightShifts:
		for d := range m.days {
			vars = append(vars, m.shifts[shiftKey{n, d, ShiftNight}])
		}
	case NoNightAfternoonDouble:
		for d := range m.days {
			ind := m.builder.NewBoolVar().WithName(fmt.Sprintf("pna_n%d_d%d", n, d))
			m.builder.AddMultiplicationEquality(ind, m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}])
			vars = append(vars, ind)
		}
	case NoSpecificDays:
		days := intSet(c.Value)
		for d, day := range m.days {
			if days[day.Day()] {
				vars = append(vars, m.isWorking[dayKey{n, d}])
			}
		}
	}
	return vars
}

// addMonthlySoftRequests folds each nurse's current-cycle preferences into
// the objective. request_specific_shifts_on_days is the one request type
// that aggregates with OR semantics across its sub-items (one overall
// "violated" indicator via AddMaxEquality) rather than one penalty term per
// day, matching the original's `overall_request_violated_indicator`.
func (m *model) addMonthlySoftRequests() {
	count := 0
	for _, n := range m.nonGovIndices {
		nurseID := m.input.Nurses[n].ID
		for reqIdx, req := range m.input.MonthlySoftRequests[nurseID] {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Errorf("recovered while applying monthly request %q for nurse %s: %v", req.Type, nurseID, r)
					}
				}()
				count += m.addMonthlySoftRequest(n, nurseID, reqIdx, req)
			}()
		}
	}
	log.Infof("applied %d monthly soft request penalty terms for non-government nurses", count)
}

func (m *model) addMonthlySoftRequest(n int, nurseID string, reqIdx int, req MonthlySoftRequest) int {
	weight := int64(PenaltyBaseSoftViolation)
	if req.IsHighPriority {
		weight += BonusHighPriority
		if m.input.CarryOverFlags[nurseID] {
			weight += BonusCarryOver
		}
	}

	if req.Type == RequestSpecificShiftsDay {
		return m.addSpecificShiftsRequest(n, reqIdx, weight, req.SpecificShifts)
	}

	var vars []cpmodel.BoolVar
	if weekday, ok := weekdayOf[req.Type]; ok {
		for d, day := range m.days {
			if dayOfWeekMonZero(day) == weekday {
				vars = append(vars, m.isWorking[dayKey{n, d}])
			}
		}
	} else {
		switch req.Type {
		case NoMorningShifts:
			for d := range m.days {
				vars = append(vars, m.shifts[shiftKey{n, d, ShiftMorning}])
			}
		case NoAfternoonShifts:
			for d := range m.days {
				vars = append(vars, m.shifts[shiftKey{n, d, ShiftAfternoon}])
			}
		case NoNightShifts:
			for d := range m.days {
				vars = append(vars, m.shifts[shiftKey{n, d, ShiftNight}])
			}
		case NoNightAfternoonDouble:
			for d := range m.days {
				ind := m.builder.NewBoolVar().WithName(fmt.Sprintf("mna_n%d_d%d_r%d", n, d, reqIdx))
				m.builder.AddMultiplicationEquality(ind, m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}])
				vars = append(vars, ind)
			}
		case NoSpecificDays:
			days := intSet(req.Value)
			for d, day := range m.days {
				if days[day.Day()] {
					vars = append(vars, m.isWorking[dayKey{n, d}])
				}
			}
		}
	}

	for _, v := range vars {
		m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: weight, expr: v})
	}
	return len(vars)
}

// addSpecificShiftsRequest builds one "part not met" indicator per
// sub-item, then ORs them (via AddMaxEquality) into a single overall
// violation indicator carrying the full request weight. A sub-item whose
// day does not fall in the window or whose shift code is unrecognized is
// treated as violated, matching the original's fallback `part_not_met_var
// == 1` branch.
func (m *model) addSpecificShiftsRequest(n, reqIdx int, weight int64, items []SpecificShiftRequest) int {
	if len(items) == 0 {
		return 0
	}
	dayOfMonth := make(map[int]int, len(m.days))
	for d, day := range m.days {
		dayOfMonth[day.Day()] = d
	}

	var triggers []cpmodel.BoolVar
	for itemIdx, item := range items {
		d, ok := dayOfMonth[item.Day]
		notMet := m.builder.NewBoolVar().WithName(fmt.Sprintf("srs_part_notmet_n%d_req%d_item%d", n, reqIdx, itemIdx))
		if !ok {
			m.builder.AddEquality(notMet, cpmodel.NewConstant(1))
			triggers = append(triggers, notMet)
			continue
		}
		switch item.ShiftType {
		case RequestShiftMorning:
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftMorning}], cpmodel.NewConstant(0)).OnlyEnforceIf(notMet)
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftMorning}], cpmodel.NewConstant(1)).OnlyEnforceIf(notMet.Not())
		case RequestShiftAfternoon:
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftAfternoon}], cpmodel.NewConstant(0)).OnlyEnforceIf(notMet)
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftAfternoon}], cpmodel.NewConstant(1)).OnlyEnforceIf(notMet.Not())
		case RequestShiftNight:
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftNight}], cpmodel.NewConstant(0)).OnlyEnforceIf(notMet)
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftNight}], cpmodel.NewConstant(1)).OnlyEnforceIf(notMet.Not())
		case RequestShiftNA:
			gotNA := m.builder.NewBoolVar().WithName(fmt.Sprintf("srs_got_na_n%d_d%d_req%d_item%d", n, d, reqIdx, itemIdx))
			m.builder.AddBoolAnd(m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}]).OnlyEnforceIf(gotNA)
			m.builder.AddBoolOr(m.shifts[shiftKey{n, d, ShiftNight}].Not(), m.shifts[shiftKey{n, d, ShiftAfternoon}].Not()).OnlyEnforceIf(gotNA.Not())
			m.builder.AddEquality(notMet, gotNA.Not())
		default:
			m.builder.AddEquality(notMet, cpmodel.NewConstant(1))
		}
		triggers = append(triggers, notMet)
	}

	if len(triggers) == 0 {
		return 0
	}
	overall := m.builder.NewBoolVar().WithName(fmt.Sprintf("srs_overall_violated_n%d_req%d", n, reqIdx))
	exprs := make([]cpmodel.LinearArgument, len(triggers))
	for i, t := range triggers {
		exprs[i] = t
	}
	m.builder.AddMaxEquality(overall, exprs...)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: weight, expr: overall})
	return 1
}

// computeNonGovTotals introduces one IntVar per non-government nurse for
// total days off, total shifts, and each per-shift-kind total, used by
// every fairness penalty below and reused verbatim by the carry-over
// evaluator (C8) to read back solved per-kind totals.
func (m *model) computeNonGovTotals() {
	numDays := len(m.days)
	count := len(m.nonGovIndices)
	m.totalOff = make([]cpmodel.IntVar, count)
	m.totalShift = make([]cpmodel.IntVar, count)
	m.totalM = make([]cpmodel.IntVar, count)
	m.totalA = make([]cpmodel.IntVar, count)
	m.totalN = make([]cpmodel.IntVar, count)

	for i, n := range m.nonGovIndices {
		m.totalOff[i] = m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("toff_n%d", i))
		m.totalShift[i] = m.builder.NewIntVar(0, int64(numDays*2)).WithName(fmt.Sprintf("tsh_n%d", i))
		m.totalM[i] = m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("tm_n%d", i))
		m.totalA[i] = m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("ta_n%d", i))
		m.totalN[i] = m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("tn_n%d", i))

		offSum := cpmodel.NewLinearExpr()
		mSum := cpmodel.NewLinearExpr()
		aSum := cpmodel.NewLinearExpr()
		nSum := cpmodel.NewLinearExpr()
		shiftSum := cpmodel.NewLinearExpr()
		for d := 0; d < numDays; d++ {
			offSum.Add(m.isOff[dayKey{n, d}])
			mSum.Add(m.shifts[shiftKey{n, d, ShiftMorning}])
			aSum.Add(m.shifts[shiftKey{n, d, ShiftAfternoon}])
			nSum.Add(m.shifts[shiftKey{n, d, ShiftNight}])
			shiftSum.Add(m.numShiftsOnDay[dayKey{n, d}])
		}
		m.builder.AddEquality(m.totalOff[i], offSum)
		m.builder.AddEquality(m.totalM[i], mSum)
		m.builder.AddEquality(m.totalA[i], aSum)
		m.builder.AddEquality(m.totalN[i], nSum)
		m.builder.AddEquality(m.totalShift[i], shiftSum)
	}
}

func (m *model) addTargetOffDayPenalty() {
	if len(m.nonGovIndices) == 0 || m.input.TargetOffDays < 0 || PenaltyOffDayUnderTarget <= 0 {
		return
	}
	numDays := len(m.days)
	count := len(m.nonGovIndices)
	underVars := make([]cpmodel.IntVar, count)
	for i := range m.nonGovIndices {
		underVars[i] = m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("offu_n%d", i))
		target := cpmodel.NewLinearExpr().AddConstant(int64(m.input.TargetOffDays))
		target.AddTerm(m.totalOff[i], -1)
		m.builder.AddGreaterOrEqual(underVars[i], target)
		m.builder.AddGreaterOrEqual(underVars[i], cpmodel.NewConstant(0))
	}
	total := m.builder.NewIntVar(0, int64(count*numDays)).WithName("tot_under_ng")
	sum := cpmodel.NewLinearExpr()
	for _, v := range underVars {
		sum.Add(v)
	}
	m.builder.AddEquality(total, sum)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: PenaltyOffDayUnderTarget, expr: total})
	log.Infof("added target off-day penalty term")
}

func (m *model) addImbalancePenalties() {
	count := len(m.nonGovIndices)
	if count <= 1 {
		return
	}
	numDays := len(m.days)

	if PenaltyOffDayImbalance > 0 {
		minOff := m.builder.NewIntVar(0, int64(numDays)).WithName("minoff_ng")
		maxOff := m.builder.NewIntVar(0, int64(numDays)).WithName("maxoff_ng")
		m.addMinMax(minOff, maxOff, m.totalOff)
		m.addIntPenalty(PenaltyOffDayImbalance, maxOff, minOff)
	}
	if PenaltyTotalShiftImbalance > 0 {
		minSh := m.builder.NewIntVar(0, int64(numDays*2)).WithName("mintsh_ng")
		maxSh := m.builder.NewIntVar(0, int64(numDays*2)).WithName("maxtsh_ng")
		m.addMinMax(minSh, maxSh, m.totalShift)
		m.addIntPenalty(PenaltyTotalShiftImbalance, maxSh, minSh)
	}
	if PenaltyShiftTypeImbalance > 0 {
		minM := m.builder.NewIntVar(0, int64(numDays)).WithName("minm_ng")
		maxM := m.builder.NewIntVar(0, int64(numDays)).WithName("maxm_ng")
		m.addMinMax(minM, maxM, m.totalM)
		m.addIntPenalty(PenaltyShiftTypeImbalance, maxM, minM)

		minA := m.builder.NewIntVar(0, int64(numDays)).WithName("mina_ng")
		maxA := m.builder.NewIntVar(0, int64(numDays)).WithName("maxa_ng")
		m.addMinMax(minA, maxA, m.totalA)
		m.addIntPenalty(PenaltyShiftTypeImbalance, maxA, minA)

		minN := m.builder.NewIntVar(0, int64(numDays)).WithName("minn_ng")
		maxN := m.builder.NewIntVar(0, int64(numDays)).WithName("maxn_ng")
		m.addMinMax(minN, maxN, m.totalN)
		m.addIntPenalty(PenaltyShiftTypeImbalance, maxN, minN)
	}
}

func (m *model) addMinMax(minVar, maxVar cpmodel.IntVar, totals []cpmodel.IntVar) {
	exprs := make([]cpmodel.LinearArgument, len(totals))
	for i, t := range totals {
		exprs[i] = t
	}
	m.builder.AddMinEquality(minVar, exprs...)
	m.builder.AddMaxEquality(maxVar, exprs...)
}

// addIntPenalty folds weight*(hi - lo) into the objective by way of an
// auxiliary IntVar.
func (m *model) addIntPenalty(weight int64, hi, lo cpmodel.IntVar) {
	diff := m.builder.NewIntVar(0, 1<<30)
	expr := cpmodel.NewLinearExpr()
	expr.Add(hi)
	expr.AddTerm(lo, -1)
	m.builder.AddEquality(diff, expr)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: weight, expr: diff})
}

func (m *model) addNADoublePenalty() {
	if PenaltyPerNADouble <= 0 {
		return
	}
	var terms []cpmodel.LinearArgument
	for _, n := range m.nonGovIndices {
		for d := range m.days {
			ind := m.builder.NewBoolVar().WithName(fmt.Sprintf("nad_n%d_d%d", n, d))
			m.builder.AddMultiplicationEquality(ind, m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}])
			terms = append(terms, ind)
		}
	}
	if len(terms) == 0 {
		return
	}
	sum := m.builder.NewIntVar(0, int64(len(terms)))
	expr := cpmodel.NewLinearExpr().AddSum(terms...)
	m.builder.AddEquality(sum, expr)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: PenaltyPerNADouble, expr: sum})
	log.Infof("added N/A double penalty term")
}

func (m *model) addNightToMorningTransitionPenalty() {
	if len(m.nmTransitionPenalties) == 0 || PenaltyNightToMorningTransition <= 0 {
		return
	}
	sum := m.builder.NewIntVar(0, int64(len(m.nmTransitionPenalties)))
	args := make([]cpmodel.LinearArgument, len(m.nmTransitionPenalties))
	for i, t := range m.nmTransitionPenalties {
		args[i] = t
	}
	expr := cpmodel.NewLinearExpr().AddSum(args...)
	m.builder.AddEquality(sum, expr)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: PenaltyNightToMorningTransition, expr: sum})
	log.Infof("added night-to-morning transition penalty term")
}

func (m *model) addEndsMonthAtMaxPenalty() {
	numDays := len(m.days)
	if numDays == 0 || m.maxConsecutiveShiftsWorked <= 0 || PenaltyEndingMonthAtMaxConsecutive <= 0 {
		return
	}
	lastDay := numDays - 1
	var vars []cpmodel.BoolVar
	for _, n := range m.nonGovIndices {
		endsAtMax := m.builder.NewBoolVar().WithName(fmt.Sprintf("ends_max_n%d", n))
		key := dayKey{n, lastDay}
		m.builder.AddEquality(m.consecutiveShiftCount[key], cpmodel.NewConstant(int64(m.maxConsecutiveShiftsWorked))).OnlyEnforceIf(endsAtMax)
		m.builder.AddLessThan(m.consecutiveShiftCount[key], cpmodel.NewConstant(int64(m.maxConsecutiveShiftsWorked))).OnlyEnforceIf(endsAtMax.Not())
		vars = append(vars, endsAtMax)
	}
	if len(vars) == 0 {
		return
	}
	sum := m.builder.NewIntVar(0, int64(len(vars)))
	args := make([]cpmodel.LinearArgument, len(vars))
	for i, v := range vars {
		args[i] = v
	}
	expr := cpmodel.NewLinearExpr().AddSum(args...)
	m.builder.AddEquality(sum, expr)
	m.objectiveTerms = append(m.objectiveTerms, objectiveTerm{weight: PenaltyEndingMonthAtMaxConsecutive, expr: sum})
	log.Infof("added ending-month-at-max-consecutive penalty term")
}
