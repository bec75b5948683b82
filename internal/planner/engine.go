package planner

import (
	"time"
)

// ScheduledPlan is one (day, content, block) placement produced by the engine.
// PlannedStart/PlannedEnd are half-open content units; StartTime/EndTime are
// wall-clock "HH:mm". Sequence is assigned after validation.
type ScheduledPlan struct {
	PlanDate       time.Time
	ContentID      string
	PlannedStart   int
	PlannedEnd     int
	StartTime      string
	EndTime        string
	BlockIndex     int
	CycleDayNumber int
	DateType       DayType
	Sequence       int
}

// Engine walks the period day by day and allocates outstanding content
// amounts into available time. It is a single deterministic pass: the same
// context always yields the same output.
type Engine struct {
	ctx *Context
}

// NewEngine builds an allocation engine over an assembled context.
func NewEngine(ctx *Context) *Engine {
	return &Engine{ctx: ctx}
}

// timeChunk is an available sub-interval of a block, in minutes since
// midnight, after exclusion and academy subtraction.
type timeChunk struct {
	start      int
	end        int
	blockIndex int
}

func (c timeChunk) minutes() int { return c.end - c.start }

// engineDay is the per-date scheduling picture derived from the context.
type engineDay struct {
	date           time.Time
	excluded       bool
	cycleDayNumber int
	dayType        DayType
	chunks         []timeChunk
	minutes        int
}

// Generate runs the allocation pass. It never aborts on a per-day problem:
// failures accumulate while later days keep being processed. Zero plans always
// come with at least one failure reason.
func (e *Engine) Generate() ([]ScheduledPlan, []FailureReason) {
	settings := e.ctx.Settings
	days := e.buildDays()

	totalDays := len(days)
	excludedDays := 0
	schedulable := 0
	for _, day := range days {
		if day.excluded {
			excludedDays++
		}
		if day.dayType == DayTypeStudy && day.minutes > 0 {
			schedulable++
		}
	}
	if schedulable == 0 {
		return nil, []FailureReason{NoStudyDaysFailure{TotalDays: totalDays, ExcludedDays: excludedDays}}
	}

	remaining := make(map[string]int, len(e.ctx.Contents))
	cursor := make(map[string]int, len(e.ctx.Contents))
	weekUse := make(map[string]map[string]int)
	for _, content := range e.ctx.Contents {
		if content.ContentType == ContentTypeCustom {
			continue
		}
		remaining[content.ContentID] = content.TotalAmount
		cursor[content.ContentID] = content.StartRange
	}

	// Remaining eligible study days at each position, used by the even
	// distribution to size per-day amounts.
	eligibleAfter := make([]int, totalDays+1)
	for i := totalDays - 1; i >= 0; i-- {
		eligibleAfter[i] = eligibleAfter[i+1]
		if days[i].dayType == DayTypeStudy && days[i].minutes > 0 {
			eligibleAfter[i]++
		}
	}

	var plans []ScheduledPlan
	var failures []FailureReason

	for i, day := range days {
		if day.dayType != DayTypeStudy {
			continue
		}
		if day.excluded && len(day.chunks) == 0 {
			// Full-day exclusion without self-study: expected zero time.
			continue
		}
		if day.minutes == 0 {
			failures = append(failures, InsufficientTimeFailure{
				Date:             day.date,
				RequiredMinutes:  settings.MinimumBlockMinutes,
				AvailableMinutes: 0,
			})
			continue
		}

		due := e.dueContents(day.date, remaining, weekUse)
		if len(due) == 0 {
			continue
		}

		required := len(due) * settings.MinimumBlockMinutes
		if day.minutes < required {
			failures = append(failures, InsufficientTimeFailure{
				Date:             day.date,
				RequiredMinutes:  required,
				AvailableMinutes: day.minutes,
			})
			maxPieces := day.minutes / settings.MinimumBlockMinutes
			if maxPieces == 0 {
				continue
			}
			due = due[:maxPieces]
		}
		if len(due) > len(day.chunks) {
			failures = append(failures, InsufficientSlotsFailure{
				Date:   day.date,
				Pieces: len(due),
				Slots:  len(day.chunks),
			})
			due = due[:len(day.chunks)]
		}

		daysLeft := eligibleAfter[i]
		if daysLeft == 0 {
			daysLeft = 1
		}

		for idx, content := range due {
			chunk := day.chunks[idx]
			amount := ceilDiv(remaining[content.ContentID], daysLeft)
			if amount > remaining[content.ContentID] {
				amount = remaining[content.ContentID]
			}
			if amount == 0 {
				continue
			}
			start := cursor[content.ContentID]
			plans = append(plans, ScheduledPlan{
				PlanDate:       day.date,
				ContentID:      content.ContentID,
				PlannedStart:   start,
				PlannedEnd:     start + amount,
				StartTime:      formatClock(chunk.start),
				EndTime:        formatClock(chunk.end),
				BlockIndex:     chunk.blockIndex,
				CycleDayNumber: day.cycleDayNumber,
				DateType:       day.dayType,
			})
			cursor[content.ContentID] += amount
			remaining[content.ContentID] -= amount

			wk := weekKey(day.date)
			if weekUse[content.ContentID] == nil {
				weekUse[content.ContentID] = make(map[string]int)
			}
			weekUse[content.ContentID][wk]++
		}
	}

	for _, content := range e.ctx.Contents {
		if content.ContentType == ContentTypeCustom {
			continue
		}
		if left := remaining[content.ContentID]; left > 0 {
			failures = append(failures, ContentAllocationFailure{
				ContentID:       content.ContentID,
				Subject:         content.Subject,
				RemainingAmount: left,
			})
		}
	}

	if len(plans) == 0 && len(failures) == 0 {
		failures = append(failures, NoStudyDaysFailure{TotalDays: totalDays, ExcludedDays: excludedDays})
	}
	return plans, failures
}

// buildDays derives the per-date availability picture for the whole period.
func (e *Engine) buildDays() []engineDay {
	settings := e.ctx.Settings
	total := e.ctx.PeriodDays()
	days := make([]engineDay, 0, total)

	schedulableOffset := 0
	for offset := 0; offset < total; offset++ {
		date := settings.PeriodStart.AddDate(0, 0, offset)
		_, excluded := e.ctx.ExclusionOn(date)

		cycleOffset := offset
		if settings.CyclePolicy == CyclePolicySkip {
			cycleOffset = schedulableOffset
		}
		number, dayType := ClassifyCycleDay(cycleOffset, settings.StudyDays, settings.ReviewDays)

		day := engineDay{
			date:           date,
			excluded:       excluded,
			cycleDayNumber: number,
			dayType:        dayType,
		}
		if !excluded || settings.SelfStudyOnExcluded {
			day.chunks = e.availableChunks(int(date.Weekday()))
			for _, chunk := range day.chunks {
				day.minutes += chunk.minutes()
			}
		}
		if !excluded {
			schedulableOffset++
		}
		days = append(days, day)
	}
	return days
}

// availableChunks turns a weekday's blocks into available chunks after
// subtracting academy windows plus their travel buffers. Chunks shorter than
// the minimum viable duration are discarded.
func (e *Engine) availableChunks(dayOfWeek int) []timeChunk {
	var chunks []timeChunk
	for _, block := range e.ctx.BlocksFor(dayOfWeek) {
		start, err := parseClock(block.StartTime)
		if err != nil {
			continue
		}
		end, err := parseClock(block.EndTime)
		if err != nil {
			continue
		}
		chunks = append(chunks, timeChunk{start: start, end: end, blockIndex: block.BlockIndex})
	}

	for _, academy := range e.ctx.AcademiesFor(dayOfWeek) {
		aStart, err := parseClock(academy.StartTime)
		if err != nil {
			continue
		}
		aEnd, err := parseClock(academy.EndTime)
		if err != nil {
			continue
		}
		aStart -= academy.TravelTime
		aEnd += academy.TravelTime
		chunks = subtractInterval(chunks, aStart, aEnd)
	}

	min := e.ctx.Settings.MinimumBlockMinutes
	kept := chunks[:0]
	for _, chunk := range chunks {
		if chunk.minutes() >= min {
			kept = append(kept, chunk)
		}
	}
	return kept
}

// subtractInterval removes [start, end) from every chunk, splitting chunks the
// interval falls inside of.
func subtractInterval(chunks []timeChunk, start, end int) []timeChunk {
	if end <= start {
		return chunks
	}
	result := make([]timeChunk, 0, len(chunks)+1)
	for _, chunk := range chunks {
		if end <= chunk.start || start >= chunk.end {
			result = append(result, chunk)
			continue
		}
		if start > chunk.start {
			result = append(result, timeChunk{start: chunk.start, end: start, blockIndex: chunk.blockIndex})
		}
		if end < chunk.end {
			result = append(result, timeChunk{start: end, end: chunk.end, blockIndex: chunk.blockIndex})
		}
	}
	return result
}

// dueContents selects contents still needing allocation for the date, strategy
// subjects first, preserving input order within each group. Custom content is
// informational only and never allocated.
func (e *Engine) dueContents(date time.Time, remaining map[string]int, weekUse map[string]map[string]int) []ContentInfo {
	wk := weekKey(date)
	var strategy, rest []ContentInfo
	for _, content := range e.ctx.Contents {
		if content.ContentType == ContentTypeCustom {
			continue
		}
		if remaining[content.ContentID] <= 0 {
			continue
		}
		subjectType := e.ctx.SubjectTypeOf(content.Subject)
		if quota := e.ctx.Settings.WeeklyDays[subjectType]; quota > 0 {
			if weekUse[content.ContentID][wk] >= quota {
				continue
			}
		}
		if subjectType == SubjectTypeStrategy {
			strategy = append(strategy, content)
		} else {
			rest = append(rest, content)
		}
	}
	return append(strategy, rest...)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
