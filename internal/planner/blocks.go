package planner

import "fmt"

// Window is an "HH:mm" wall-clock interval.
type Window struct {
	Start string
	End   string
}

// TimeBlock is a contiguous slice of a day's study window. Blocks for the same
// weekday never overlap and are ordered by BlockIndex.
type TimeBlock struct {
	ID              string
	DayOfWeek       int // 0-6, Sunday=0
	BlockIndex      int
	StartTime       string
	EndTime         string
	DurationMinutes int
}

// BuildWeekBlocks splits the daily study window into per-weekday blocks. A
// lunch window strictly inside the study window yields two blocks per day,
// otherwise each day gets a single block covering the whole window.
func BuildWeekBlocks(study Window, lunch *Window) ([]TimeBlock, error) {
	studyStart, err := parseClock(study.Start)
	if err != nil {
		return nil, fmt.Errorf("study window: %w", err)
	}
	studyEnd, err := parseClock(study.End)
	if err != nil {
		return nil, fmt.Errorf("study window: %w", err)
	}
	if studyEnd <= studyStart {
		return nil, fmt.Errorf("study window %s-%s must end after it starts", study.Start, study.End)
	}

	segments := [][2]int{{studyStart, studyEnd}}
	if lunch != nil {
		lunchStart, err := parseClock(lunch.Start)
		if err != nil {
			return nil, fmt.Errorf("lunch window: %w", err)
		}
		lunchEnd, err := parseClock(lunch.End)
		if err != nil {
			return nil, fmt.Errorf("lunch window: %w", err)
		}
		if lunchEnd <= lunchStart {
			return nil, fmt.Errorf("lunch window %s-%s must end after it starts", lunch.Start, lunch.End)
		}
		if lunchStart <= studyStart || lunchEnd >= studyEnd {
			return nil, fmt.Errorf("lunch window %s-%s must be strictly inside study window %s-%s", lunch.Start, lunch.End, study.Start, study.End)
		}
		segments = [][2]int{{studyStart, lunchStart}, {lunchEnd, studyEnd}}
	}

	blocks := make([]TimeBlock, 0, 7*len(segments))
	for day := 0; day < 7; day++ {
		for idx, seg := range segments {
			blocks = append(blocks, TimeBlock{
				ID:              fmt.Sprintf("block-%d-%d", day, idx),
				DayOfWeek:       day,
				BlockIndex:      idx,
				StartTime:       formatClock(seg[0]),
				EndTime:         formatClock(seg[1]),
				DurationMinutes: seg[1] - seg[0],
			})
		}
	}
	return blocks, nil
}
