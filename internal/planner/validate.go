package planner

import (
	"fmt"
	"sort"
	"strings"
)

// Warning severity levels surfaced to callers.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Warning codes emitted by the validation pass.
const (
	WarningCodeOverlapAdjusted      = "TIME_OVERLAP_ADJUSTED"
	WarningCodeUnadjustableOverlaps = "UNADJUSTABLE_OVERLAPS"
)

// Warning is a user-facing diagnostic attached to a generated plan.
type Warning struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// UnadjustablePlan pairs a plan row with the reason its overlap could not be
// repaired.
type UnadjustablePlan struct {
	Plan   ScheduledPlan
	Reason string
}

// ValidationResult is the outcome of the overlap validation pass.
type ValidationResult struct {
	IsValid           bool
	Plans             []ScheduledPlan
	Warnings          []Warning
	AutoAdjustedCount int
	Unadjustable      []UnadjustablePlan
}

// ValidatePlans scans plans per date for wall-clock overlaps and repairs what
// it can by shifting the later plan's start forward, as long as the shrunk
// duration stays at or above minViableMinutes. The input slice is never
// mutated; the result carries a fresh copy. Engine failures are folded into
// the warning list so callers see one consolidated diagnostic stream.
func ValidatePlans(plans []ScheduledPlan, failures []FailureReason, minViableMinutes int) ValidationResult {
	if minViableMinutes <= 0 {
		minViableMinutes = 30
	}

	out := make([]ScheduledPlan, len(plans))
	copy(out, plans)

	result := ValidationResult{Plans: out}
	for _, failure := range failures {
		result.Warnings = append(result.Warnings, Warning{
			Code:     strings.ToUpper(string(failure.Kind())),
			Severity: SeverityWarning,
			Message:  failure.Message(),
		})
	}

	byDate := make(map[string][]int)
	var dates []string
	for i, plan := range out {
		key := dateKey(plan.PlanDate)
		if _, seen := byDate[key]; !seen {
			dates = append(dates, key)
		}
		byDate[key] = append(byDate[key], i)
	}
	sort.Strings(dates)

	for _, date := range dates {
		indexes := byDate[date]
		sort.SliceStable(indexes, func(a, b int) bool {
			left, right := out[indexes[a]], out[indexes[b]]
			if left.StartTime == right.StartTime {
				return left.BlockIndex < right.BlockIndex
			}
			return left.StartTime < right.StartTime
		})

		prevEnd := -1
		for _, idx := range indexes {
			plan := &out[idx]
			start, err := parseClock(plan.StartTime)
			if err != nil {
				continue
			}
			end, err := parseClock(plan.EndTime)
			if err != nil {
				continue
			}
			if prevEnd < 0 || start >= prevEnd {
				prevEnd = end
				continue
			}

			overlap := prevEnd - start
			if end-prevEnd >= minViableMinutes {
				plan.StartTime = formatClock(prevEnd)
				result.AutoAdjustedCount++
				result.Warnings = append(result.Warnings, Warning{
					Code:     WarningCodeOverlapAdjusted,
					Severity: SeverityInfo,
					Message:  fmt.Sprintf("%s: shifted %s start forward by %d minutes to resolve an overlap", date, plan.ContentID, overlap),
				})
				prevEnd = end
				continue
			}

			result.Unadjustable = append(result.Unadjustable, UnadjustablePlan{
				Plan:   *plan,
				Reason: fmt.Sprintf("shrinking below %d minutes would make the slot unusable", minViableMinutes),
			})
			if end > prevEnd {
				prevEnd = end
			}
		}
	}

	if len(result.Unadjustable) > 0 {
		result.Warnings = append(result.Warnings, Warning{
			Code:     WarningCodeUnadjustableOverlaps,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d overlapping plans could not be auto-adjusted", len(result.Unadjustable)),
		})
	}
	result.IsValid = len(result.Unadjustable) == 0
	return result
}
