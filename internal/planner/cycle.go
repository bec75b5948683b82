package planner

import "time"

// DayType is the pedagogical role of a day within the study/review cycle.
type DayType string

const (
	DayTypeStudy  DayType = "study"
	DayTypeReview DayType = "review"
)

// CyclePolicy decides how excluded days interact with cycle numbering.
// Consume counts an excluded day as a used cycle slot; Skip freezes the cycle
// until the next schedulable day.
type CyclePolicy string

const (
	CyclePolicyConsume CyclePolicy = "consume"
	CyclePolicySkip    CyclePolicy = "skip"
)

// CycleDay describes a date's position within the repeating cadence.
type CycleDay struct {
	Date           time.Time
	DayType        DayType
	CycleDayNumber int
}

// ClassifyCycleDay maps a 0-based day offset onto the repeating study/review
// cycle. Independent of calendar weekday and of exclusions.
func ClassifyCycleDay(offset, studyDays, reviewDays int) (int, DayType) {
	cycleLength := studyDays + reviewDays
	if cycleLength <= 0 {
		return 0, DayTypeStudy
	}
	number := offset%cycleLength + 1
	if number <= studyDays {
		return number, DayTypeStudy
	}
	return number, DayTypeReview
}
