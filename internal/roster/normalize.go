package roster

import (
	"strconv"
	"strings"
	"time"
)

// RawNurse is the wire shape of one nurse entry in a generate-schedule
// request, before permanent-constraint values have been coerced to int.
type RawNurse struct {
	ID                   string               `json:"id"`
	Prefix               string               `json:"prefix"`
	FirstName            string               `json:"firstName"`
	LastName             string               `json:"lastName"`
	IsGovernmentOfficial bool                 `json:"isGovernmentOfficial"`
	Constraints          []RawConstraint      `json:"constraints"`
}

// RawConstraint is the wire shape shared by permanent constraints and
// monthly soft requests; Value arrives as a loosely typed JSON array.
type RawConstraint struct {
	Type           string                    `json:"type"`
	Value          []any                     `json:"value"`
	Strength       string                    `json:"strength"`
	IsHighPriority bool                      `json:"is_high_priority"`
	SpecificShifts []RawSpecificShiftRequest `json:"-"` // not decoded or set by Normalize, which parses request_specific_shifts_on_days sub-items from Value directly.
}

// RawSpecificShiftRequest is one element of a request_specific_shifts_on_days
// Value array: {"day": 5, "shift_type": 1}.
type RawSpecificShiftRequest struct {
	Day       int `json:"day"`
	ShiftType int `json:"shift_type"`
}

// RawSchedule carries the requested window as RFC3339 or plain-date strings.
type RawSchedule struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// RawPreviousMonthSchedule is the previous cycle's solved schedule, echoed
// back by the caller so sequential constraints can be seeded at day 0.
type RawPreviousMonthSchedule struct {
	Days           []string                        `json:"days"`
	NurseSchedules map[string]RawNurseScheduleEntry `json:"nurseSchedules"`
}

// RawNurseScheduleEntry is one nurse's slice of a RawPreviousMonthSchedule.
type RawNurseScheduleEntry struct {
	Shifts map[string][]int `json:"shifts"`
}

// RawRequest is the top-level JSON payload the transport layer decodes
// before handing it to Normalize.
type RawRequest struct {
	Nurses                []RawNurse                       `json:"nurses"`
	Schedule              RawSchedule                       `json:"schedule"`
	PreviousMonthSchedule *RawPreviousMonthSchedule          `json:"previousMonthSchedule"`
	MonthlySoftRequests   map[string][]RawConstraint         `json:"monthly_soft_requests"`
	CarryOverFlags        map[string]bool                    `json:"carry_over_flags"`
	Holidays              []any                              `json:"holidays"`
	RequiredNursesMorning  *int                              `json:"requiredNursesMorning"`
	RequiredNursesAfternoon *int                             `json:"requiredNursesAfternoon"`
	RequiredNursesNight    *int                               `json:"requiredNursesNight"`
	MaxConsecutiveShiftsWorked *int                           `json:"maxConsecutiveShiftsWorked"`
	TargetOffDays          *int                               `json:"targetOffDays"`
	SolverTimeLimit        *float64                           `json:"solverTimeLimit"`
}

// intOr returns *p if non-nil, else def.
func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Normalize validates a decoded request and converts it into the Input the
// rest of the pipeline operates on. It mirrors the extraction/validation
// block at the top of the original handler: required fields are checked
// before any date parsing is attempted, negative counts are rejected, and
// the headcount is sanity-checked against the busiest shift's requirement.
func Normalize(raw RawRequest) (Input, error) {
	if len(raw.Nurses) == 0 {
		return Input{}, invalidInputf("'nurses' must be a non-empty list")
	}
	for _, n := range raw.Nurses {
		if n.ID == "" {
			return Input{}, invalidInputf("missing 'id' in nurse data")
		}
	}

	startDate, err := parseFlexibleDate(raw.Schedule.StartDate)
	if err != nil {
		return Input{}, invalidInputf("invalid start date: %v", err)
	}
	endDate, err := parseFlexibleDate(raw.Schedule.EndDate)
	if err != nil {
		return Input{}, invalidInputf("invalid end date: %v", err)
	}
	if startDate.After(endDate) {
		return Input{}, invalidInputf("start date cannot be after end date")
	}

	reqMorning := intOr(raw.RequiredNursesMorning, 2)
	reqAfternoon := intOr(raw.RequiredNursesAfternoon, 3)
	reqNight := intOr(raw.RequiredNursesNight, 2)
	if reqMorning < 0 || reqAfternoon < 0 || reqNight < 0 {
		return Input{}, invalidInputf("required nurse counts cannot be negative")
	}

	maxConsecutive := intOr(raw.MaxConsecutiveShiftsWorked, 6)
	if maxConsecutive < 1 {
		return Input{}, invalidInputf("max consecutive shifts worked must be >= 1")
	}

	targetOffDays := intOr(raw.TargetOffDays, 8)
	if targetOffDays < 0 {
		return Input{}, invalidInputf("target off days cannot be negative")
	}

	maxRequired := reqMorning
	if reqAfternoon > maxRequired {
		maxRequired = reqAfternoon
	}
	if reqNight > maxRequired {
		maxRequired = reqNight
	}
	if len(raw.Nurses) < maxRequired {
		return Input{}, invalidInputf("not enough nurses: have %d, need at least %d per shift", len(raw.Nurses), maxRequired)
	}

	holidays, err := toIntSlice(raw.Holidays)
	if err != nil {
		return Input{}, invalidInputf("invalid day number in 'holidays': %v", err)
	}

	nurses := make([]Nurse, 0, len(raw.Nurses))
	for _, rn := range raw.Nurses {
		constraints := make([]PermanentConstraint, 0, len(rn.Constraints))
		for _, rc := range rn.Constraints {
			if rc.Type == "" {
				continue
			}
			strength := StrengthHard
			if rc.Strength == string(StrengthSoft) {
				strength = StrengthSoft
			}
			values, _ := toIntSlice(rc.Value)
			constraints = append(constraints, PermanentConstraint{
				Type:     ConstraintType(rc.Type),
				Value:    values,
				Strength: strength,
			})
		}
		nurses = append(nurses, Nurse{
			ID:                   rn.ID,
			Prefix:               rn.Prefix,
			FirstName:            rn.FirstName,
			LastName:             rn.LastName,
			IsGovernmentOfficial: rn.IsGovernmentOfficial,
			Constraints:          constraints,
		})
	}

	monthlyRequests := make(map[string][]MonthlySoftRequest, len(raw.MonthlySoftRequests))
	for nurseID, reqs := range raw.MonthlySoftRequests {
		converted := make([]MonthlySoftRequest, 0, len(reqs))
		for _, rc := range reqs {
			if rc.Type == "" {
				continue
			}
			msr := MonthlySoftRequest{
				Type:           ConstraintType(rc.Type),
				IsHighPriority: rc.IsHighPriority,
			}
			if ConstraintType(rc.Type) == RequestSpecificShiftsDay {
				msr.SpecificShifts = parseSpecificShifts(rc.Value)
			} else {
				msr.Value, _ = toIntSlice(rc.Value)
			}
			converted = append(converted, msr)
		}
		monthlyRequests[nurseID] = converted
	}

	var prior *PriorMonthSnapshot
	if raw.PreviousMonthSchedule != nil {
		prior, err = normalizePriorSchedule(*raw.PreviousMonthSchedule)
		if err != nil {
			return Input{}, invalidInputf("invalid previousMonthSchedule: %v", err)
		}
	}

	return Input{
		Nurses:                nurses,
		StartDate:             startDate,
		EndDate:               endDate,
		PreviousMonthSchedule: prior,
		MonthlySoftRequests:   monthlyRequests,
		CarryOverFlags:        raw.CarryOverFlags,
		Holidays:              holidays,
		Staffing: StaffingRequirement{
			Morning:   reqMorning,
			Afternoon: reqAfternoon,
			Night:     reqNight,
		},
		MaxConsecutiveShifts: maxConsecutive,
		TargetOffDays:        targetOffDays,
		SolverTimeLimit:      time.Duration(floatOr(raw.SolverTimeLimit, DefaultSolverTimeLimitSeconds) * float64(time.Second)),
	}, nil
}

// parseFlexibleDate accepts a bare "2024-05-01" date or a full RFC3339
// timestamp, discarding any time component, the way the original handler's
// `.split('T')[0]` does.
func parseFlexibleDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, invalidInputf("date is required")
	}
	datePart := strings.SplitN(s, "T", 2)[0]
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func toIntSlice(vs []any) ([]int, error) {
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		switch x := v.(type) {
		case float64:
			out = append(out, int(x))
		case int:
			out = append(out, x)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(x))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		default:
			return nil, invalidInputf("unsupported value element %v", v)
		}
	}
	return out, nil
}

func parseSpecificShifts(vs []any) []SpecificShiftRequest {
	out := make([]SpecificShiftRequest, 0, len(vs))
	for _, v := range vs {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		day, _ := m["day"].(float64)
		shiftType, _ := m["shift_type"].(float64)
		out = append(out, SpecificShiftRequest{
			Day:       int(day),
			ShiftType: RequestShiftCode(int(shiftType)),
		})
	}
	return out
}

func normalizePriorSchedule(raw RawPreviousMonthSchedule) (*PriorMonthSnapshot, error) {
	days := make([]time.Time, 0, len(raw.Days))
	for _, iso := range raw.Days {
		t, err := parseFlexibleDate(iso)
		if err != nil {
			return nil, err
		}
		days = append(days, t)
	}

	nurseShifts := make(map[string]map[time.Time][]ShiftKind, len(raw.NurseSchedules))
	for nurseID, entry := range raw.NurseSchedules {
		byDay := make(map[time.Time][]ShiftKind, len(entry.Shifts))
		for iso, kinds := range entry.Shifts {
			t, err := parseFlexibleDate(iso)
			if err != nil {
				continue
			}
			shifts := make([]ShiftKind, 0, len(kinds))
			for _, k := range kinds {
				shifts = append(shifts, ShiftKind(k))
			}
			byDay[t] = shifts
		}
		nurseShifts[nurseID] = byDay
	}

	return &PriorMonthSnapshot{Days: days, NurseShifts: nurseShifts}, nil
}
