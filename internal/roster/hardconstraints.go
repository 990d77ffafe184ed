package roster

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// buildHardConstraints adds every constraint the solved schedule must
// satisfy: at-most-one-shift-kind-family rules, the per-day staffing
// requirement, government officials' fixed weekend/holiday schedule,
// sequential (consecutive-shift and same-shift-run) rules seeded from the
// prior month, approved hard requests, and hard permanent profile rules.
// Soft permanent/monthly rules are left for buildPenalties (C5).
func (m *model) buildHardConstraints() {
	m.priorStates = derivePriorStates(m.input, m.input.Nurses, m.nonGovIndices)

	m.addShiftExclusivity()
	m.addStaffingRequirement()
	m.addGovernmentFixedSchedule()
	m.addSequentialConstraints()
	m.addApprovedHardRequests()
	m.addPermanentHardConstraints()
}

// addShiftExclusivity forbids a non-government nurse from double-booking
// morning with afternoon, or morning with night, on the same day. The
// afternoon+night double ("N/A double") is allowed and instead penalized
// softly in C5, matching the original's deliberate asymmetry.
func (m *model) addShiftExclusivity() {
	for _, n := range m.nonGovIndices {
		for d := range m.days {
			morning := m.shifts[shiftKey{n, d, ShiftMorning}]
			afternoon := m.shifts[shiftKey{n, d, ShiftAfternoon}]
			night := m.shifts[shiftKey{n, d, ShiftNight}]
			m.builder.AddLessOrEqual(addExpr(morning, afternoon), cpmodel.NewConstant(1))
			m.builder.AddLessOrEqual(addExpr(morning, night), cpmodel.NewConstant(1))
		}
	}
}

// addStaffingRequirement pins the exact headcount on every (day, shift)
// cell, drawing from the whole roster including government officials.
func (m *model) addStaffingRequirement() {
	for d := range m.days {
		for _, s := range AllShiftKinds {
			required := m.input.Staffing.ForShift(s)
			sum := cpmodel.NewLinearExpr()
			for n := range m.input.Nurses {
				sum.Add(m.shifts[shiftKey{n, d, s}])
			}
			m.builder.AddEquality(sum, cpmodel.NewConstant(int64(required)))
		}
	}
}

// addGovernmentFixedSchedule pins government officials off on weekends and
// declared holidays, and on-duty (morning only) every other day.
func (m *model) addGovernmentFixedSchedule() {
	holidaySet := make(map[int]bool, len(m.input.Holidays))
	for _, h := range m.input.Holidays {
		holidaySet[h] = true
	}

	applied := 0
	for n := range m.input.Nurses {
		if !m.isGovernment[n] {
			continue
		}
		for d, day := range m.days {
			weekday := dayOfWeekMonZero(day)
			isWeekend := weekday == 5 || weekday == 6
			isHoliday := holidaySet[day.Day()]

			key := dayKey{n, d}
			if isWeekend || isHoliday {
				m.builder.AddEquality(m.isOff[key], cpmodel.NewConstant(1))
				m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftMorning}], cpmodel.NewConstant(0))
				m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftAfternoon}], cpmodel.NewConstant(0))
				m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftNight}], cpmodel.NewConstant(0))
				applied += 4
			} else {
				m.builder.AddEquality(m.isOff[key], cpmodel.NewConstant(0))
				m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftAfternoon}], cpmodel.NewConstant(0))
				m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftNight}], cpmodel.NewConstant(0))
				applied += 3
			}
		}
	}
	log.Infof("applied %d fixed-schedule constraints for government officials", applied)
}

// addSequentialConstraints seeds the consecutive-shift accumulator and the
// same-shift-run limit from each non-government nurse's prior month, then
// propagates both forward through the window. Constructing each nurse's
// constraints is wrapped in a recover so a single malformed prior-state
// value cannot abort the whole build; the nurse is simply left unseeded
// for the remainder of the pass.
func (m *model) addSequentialConstraints() {
	numDays := len(m.days)
	applied := 0
	for _, n := range m.nonGovIndices {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("recovered while building sequential constraints for nurse index %d: %v", n, r)
				}
			}()
			applied += m.addSequentialConstraintsForNurse(n, numDays)
		}()
	}
	log.Infof("applied %d transition/consecutive constraints for non-government nurses", applied)
}

func (m *model) addSequentialConstraintsForNurse(n, numDays int) int {
	applied := 0
	prior := m.priorStates[n]

	// Afternoon->Night is disallowed across the boundary, same as within
	// the window (handled below via the per-day loop).
	if hasShift(prior.lastDayShifts, ShiftAfternoon) {
		m.builder.AddEquality(m.shifts[shiftKey{n, 0, ShiftNight}], cpmodel.NewConstant(0))
		applied++
	}
	if hasShift(prior.lastDayShifts, ShiftNight) && hasShift(prior.lastDayShifts, ShiftAfternoon) {
		m.builder.AddEquality(m.shifts[shiftKey{n, 0, ShiftNight}], cpmodel.NewConstant(0))
		applied++
		if PenaltyNightToMorningTransition > 0 {
			m.nmTransitionPenalties = append(m.nmTransitionPenalties, m.shifts[shiftKey{n, 0, ShiftMorning}])
		}
	}

	if MaxConsecutiveSameShift > 0 {
		for _, s := range AllShiftKinds {
			prevCount := prior.lastShiftTypeCount[s]
			switch {
			case prevCount >= MaxConsecutiveSameShift:
				m.builder.AddEquality(m.shifts[shiftKey{n, 0, s}], cpmodel.NewConstant(0))
				applied++
			case prevCount == MaxConsecutiveSameShift-1:
				if numDays >= 2 {
					sum := addExpr(m.shifts[shiftKey{n, 0, s}], m.shifts[shiftKey{n, 1, s}])
					m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(1))
					applied++
				}
			case prevCount == MaxConsecutiveSameShift-2:
				if numDays >= 3 {
					sum := cpmodel.NewLinearExpr()
					sum.Add(m.shifts[shiftKey{n, 0, s}])
					sum.Add(m.shifts[shiftKey{n, 1, s}])
					sum.Add(m.shifts[shiftKey{n, 2, s}])
					m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(int64(MaxConsecutiveSameShift-prevCount)))
					applied++
				}
			}
		}
	}

	if numDays > 1 {
		for d := 0; d < numDays-1; d++ {
			sum := addExpr(m.shifts[shiftKey{n, d, ShiftAfternoon}], m.shifts[shiftKey{n, d + 1, ShiftNight}])
			m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(1))
			applied++

			naDouble := m.builder.NewBoolVar().WithName(fmt.Sprintf("na_d_n%d_d%d", n, d))
			m.builder.AddMultiplicationEquality(naDouble, m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}])
			m.builder.AddImplication(naDouble, m.shifts[shiftKey{n, d + 1, ShiftNight}].Not())
			applied++

			if PenaltyNightToMorningTransition > 0 {
				transition := m.builder.NewBoolVar().WithName(fmt.Sprintf("nm_t_n%d_d%d", n, d))
				m.builder.AddBoolAnd(naDouble, m.shifts[shiftKey{n, d + 1, ShiftMorning}]).OnlyEnforceIf(transition)
				m.builder.AddBoolOr(naDouble.Not(), m.shifts[shiftKey{n, d + 1, ShiftMorning}].Not()).OnlyEnforceIf(transition.Not())
				m.builder.AddImplication(transition, naDouble)
				m.builder.AddImplication(transition, m.shifts[shiftKey{n, d + 1, ShiftMorning}])
				m.nmTransitionPenalties = append(m.nmTransitionPenalties, transition)
			}
		}
	}

	if m.maxConsecutiveShiftsWorked > 0 {
		key0 := dayKey{n, 0}
		m.builder.AddEquality(m.consecutiveShiftCount[key0], cpmodel.NewConstant(0)).OnlyEnforceIf(m.isOff[key0])

		wasOff := int64(0)
		wasWorking := int64(1)
		if prior.wasOffLastDay {
			wasOff = 1
			wasWorking = 0
		}
		if wasOff == 1 {
			m.builder.AddEquality(m.consecutiveShiftCount[key0], m.numShiftsOnDay[key0]).OnlyEnforceIf(m.isWorking[key0])
		}
		if wasWorking == 1 {
			sum := cpmodel.NewLinearExpr()
			sum.AddConstant(int64(prior.consecutiveShifts))
			sum.Add(m.numShiftsOnDay[key0])
			m.builder.AddEquality(m.consecutiveShiftCount[key0], sum).OnlyEnforceIf(m.isWorking[key0])
		}
		m.builder.AddLessOrEqual(m.consecutiveShiftCount[key0], cpmodel.NewConstant(int64(m.maxConsecutiveShiftsWorked)))

		for d := 1; d < numDays; d++ {
			key := dayKey{n, d}
			prevKey := dayKey{n, d - 1}
			m.builder.AddEquality(m.consecutiveShiftCount[key], cpmodel.NewConstant(0)).OnlyEnforceIf(m.isOff[key])
			m.builder.AddEquality(m.consecutiveShiftCount[key], m.numShiftsOnDay[key]).OnlyEnforceIf(m.isWorking[key]).OnlyEnforceIf(m.isOff[prevKey])
			sum := cpmodel.NewLinearExpr()
			sum.Add(m.consecutiveShiftCount[prevKey])
			sum.Add(m.numShiftsOnDay[key])
			m.builder.AddEquality(m.consecutiveShiftCount[key], sum).OnlyEnforceIf(m.isWorking[key]).OnlyEnforceIf(m.isWorking[prevKey])
			m.builder.AddLessOrEqual(m.consecutiveShiftCount[key], cpmodel.NewConstant(int64(m.maxConsecutiveShiftsWorked)))
			applied++
		}
	}

	if MaxConsecutiveSameShift > 0 && numDays > MaxConsecutiveSameShift {
		for _, s := range AllShiftKinds {
			for start := 0; start <= numDays-MaxConsecutiveSameShift-1; start++ {
				sum := cpmodel.NewLinearExpr()
				for k := 0; k <= MaxConsecutiveSameShift; k++ {
					sum.Add(m.shifts[shiftKey{n, start + k, s}])
				}
				m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(int64(MaxConsecutiveSameShift)))
				applied++
			}
		}
	}

	if MaxConsecutiveOffDays > 0 && numDays > MaxConsecutiveOffDays {
		for start := 0; start <= numDays-MaxConsecutiveOffDays-1; start++ {
			sum := cpmodel.NewLinearExpr()
			for k := 0; k <= MaxConsecutiveOffDays; k++ {
				sum.Add(m.isOff[dayKey{n, start + k}])
			}
			m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(int64(MaxConsecutiveOffDays)))
			applied++
		}
	}

	if numDays >= WindowSizeForMinOff && MinOffDaysInWindow > 0 {
		for start := 0; start <= numDays-WindowSizeForMinOff; start++ {
			sum := cpmodel.NewLinearExpr()
			for k := 0; k < WindowSizeForMinOff; k++ {
				sum.Add(m.isOff[dayKey{n, start + k}])
			}
			m.builder.AddGreaterOrEqual(sum, cpmodel.NewConstant(int64(MinOffDaysInWindow)))
			applied++
		}
	}

	return applied
}

// addApprovedHardRequests pins is-off for every (nurse, day) the external
// store has an approved hard request for. Government officials never have
// hard requests applied, matching the original's scoping of the Firestore
// lookup to non-government IDs; a missing or failing store degrades to
// "no hard requests" rather than failing the whole solve (see roster.go).
func (m *model) addApprovedHardRequests() {
	dateToDay := make(map[string]int, len(m.days))
	for d, day := range m.days {
		dateToDay[day.Format("2006-01-02")] = d
	}

	applied := 0
	for _, req := range m.input.HardRequests {
		n, ok := m.nurseIndex[req.NurseID]
		if !ok || m.isGovernment[n] {
			continue
		}
		d, ok := dateToDay[req.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		m.builder.AddEquality(m.isOff[dayKey{n, d}], cpmodel.NewConstant(1))
		applied++
	}
	log.Infof("applied %d approved hard requests", applied)
}

// addPermanentHardConstraints applies every non-government nurse's "hard"
// strength profile constraints. Soft-strength entries are left for C5.
func (m *model) addPermanentHardConstraints() {
	applied := 0
	for _, n := range m.nonGovIndices {
		for _, c := range m.input.Nurses[n].Constraints {
			if c.Strength != StrengthHard {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Errorf("recovered while applying permanent constraint %q for nurse %s: %v", c.Type, m.input.Nurses[n].ID, r)
					}
				}()
				applied += m.applyHardPermanentConstraint(n, c)
			}()
		}
	}
	log.Infof("applied %d hard permanent constraints for non-government nurses", applied)
}

func (m *model) applyHardPermanentConstraint(n int, c PermanentConstraint) int {
	applied := 0
	if weekday, ok := weekdayOf[c.Type]; ok {
		for d, day := range m.days {
			if dayOfWeekMonZero(day) == weekday {
				m.builder.AddEquality(m.isOff[dayKey{n, d}], cpmodel.NewConstant(1))
				applied++
			}
		}
		return applied
	}
	switch c.Type {
	case NoMorningShifts:
		for d := range m.days {
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftMorning}], cpmodel.NewConstant(0))
			applied++
		}
	case NoAfternoonShifts:
		for d := range m.days {
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftAfternoon}], cpmodel.NewConstant(0))
			applied++
		}
	case NoNightShifts:
		for d := range m.days {
			m.builder.AddEquality(m.shifts[shiftKey{n, d, ShiftNight}], cpmodel.NewConstant(0))
			applied++
		}
	case NoNightAfternoonDouble:
		for d := range m.days {
			sum := addExpr(m.shifts[shiftKey{n, d, ShiftNight}], m.shifts[shiftKey{n, d, ShiftAfternoon}])
			m.builder.AddLessOrEqual(sum, cpmodel.NewConstant(1))
			applied++
		}
	case NoSpecificDays:
		days := intSet(c.Value)
		for d, day := range m.days {
			if days[day.Day()] {
				m.builder.AddEquality(m.isOff[dayKey{n, d}], cpmodel.NewConstant(1))
				applied++
			}
		}
	}
	return applied
}

func intSet(vs []int) map[int]bool {
	out := make(map[int]bool, len(vs))
	for _, v := range vs {
		out[v] = true
	}
	return out
}

// addExpr is a small helper around cpmodel.NewLinearExpr for the common
// two-term sum, used throughout the exclusivity and transition rules.
func addExpr(a, b cpmodel.LinearArgument) *cpmodel.LinearExpr {
	return cpmodel.NewLinearExpr().Add(a).Add(b)
}
