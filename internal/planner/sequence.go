package planner

import (
	"fmt"
	"sort"
)

// AssignSequence orders plans chronologically and numbers them per date,
// start-time ascending with block index breaking ties. Returns a new slice;
// rows missing a start time are rejected.
func AssignSequence(plans []ScheduledPlan) ([]ScheduledPlan, error) {
	for _, plan := range plans {
		if plan.StartTime == "" {
			return nil, fmt.Errorf("plan for content %s on %s is missing a start time", plan.ContentID, plan.PlanDate.Format(dateLayout))
		}
	}

	out := make([]ScheduledPlan, len(plans))
	copy(out, plans)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PlanDate.Equal(out[j].PlanDate) {
			return out[i].PlanDate.Before(out[j].PlanDate)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].BlockIndex < out[j].BlockIndex
	})

	sequence := 0
	currentDate := ""
	for i := range out {
		key := dateKey(out[i].PlanDate)
		if key != currentDate {
			currentDate = key
			sequence = 0
		}
		sequence++
		out[i].Sequence = sequence
	}
	return out, nil
}
