package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/dto"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/planner"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/repository"
	appErrors "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/errors"
)

type contentResolver interface {
	ListBySelection(ctx context.Context, studentID string, contentIDs []string) ([]models.Content, error)
}

type studyPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error
	ListByStudent(ctx context.Context, studentID string) ([]models.StudyPlan, error)
	FindByID(ctx context.Context, id string) (*models.StudyPlan, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudyPlanStatus, meta types.JSONText) error
}

type planItemRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, items []models.PlanItem) error
	ListByPlan(ctx context.Context, planID string) ([]models.PlanItem, error)
	DeleteByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) error
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(duration time.Duration, planned, failures int)
	RecordCacheOperation(hit bool)
}

// PlanGeneratorService builds study-plan proposals and persists accepted ones.
type PlanGeneratorService struct {
	contents  contentResolver
	plans     studyPlanRepository
	items     planItemRepository
	cache     planCache
	tx        txProvider
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
	cfg       PlanGeneratorConfig
}

// PlanGeneratorConfig governs generator behaviour.
type PlanGeneratorConfig struct {
	ProposalTTL         time.Duration
	MinimumBlockMinutes int
	MinViableMinutes    int
	DefaultCyclePolicy  string
	CacheTTL            time.Duration
}

// NewPlanGeneratorService wires planner dependencies.
func NewPlanGeneratorService(
	contents contentResolver,
	plans studyPlanRepository,
	items planItemRepository,
	cache planCache,
	tx txProvider,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlanGeneratorConfig,
) *PlanGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.MinViableMinutes <= 0 {
		cfg.MinViableMinutes = 30
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &PlanGeneratorService{
		contents:  contents,
		plans:     plans,
		items:     items,
		cache:     cache,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
		cfg:       cfg,
	}
}

// Generate runs the full pipeline: content resolution, block building,
// allocation, overlap validation and sequencing. The result is cached as a
// proposal until the client saves or abandons it.
func (s *PlanGeneratorService) Generate(ctx context.Context, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	started := time.Now()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan generation payload")
	}

	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	contents, err := s.resolveContents(ctx, req.StudentID, req.ContentIDs)
	if err != nil {
		return nil, err
	}

	blocks, err := buildBlocks(req.StudyHours, req.Lunch)
	if err != nil {
		return nil, err
	}

	exclusions, err := buildExclusions(req.Exclusions)
	if err != nil {
		return nil, err
	}

	academies := make([]planner.AcademySchedule, 0, len(req.AcademySchedules))
	for _, a := range req.AcademySchedules {
		academies = append(academies, planner.AcademySchedule{
			DayOfWeek:  a.DayOfWeek,
			StartTime:  a.Start,
			EndTime:    a.End,
			Subject:    a.Subject,
			TravelTime: a.TravelTime,
		})
	}

	subjectTypes, weeklyDays := buildSubjectSettings(req.SubjectSettings)

	cyclePolicy := planner.CyclePolicy(req.CyclePolicy)
	if cyclePolicy == "" {
		cyclePolicy = planner.CyclePolicy(s.cfg.DefaultCyclePolicy)
	}

	settings := planner.Settings{
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		StudyDays:           req.StudyDays,
		ReviewDays:          req.ReviewDays,
		Strategy:            planner.DistributionStrategy(req.DistributionStrategy),
		WeeklyDays:          weeklyDays,
		CyclePolicy:         cyclePolicy,
		SelfStudyOnExcluded: req.SelfStudyOnExcluded,
		MinimumBlockMinutes: s.cfg.MinimumBlockMinutes,
	}

	planCtx, err := planner.NewContext(contents, blocks, exclusions, academies, subjectTypes, settings)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not assemble scheduling context")
	}

	rawPlans, failures := planner.NewEngine(planCtx).Generate()
	result := planner.ValidatePlans(rawPlans, failures, s.cfg.MinViableMinutes)

	sequenced, err := planner.AssignSequence(result.Plans)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sequence generated plans")
	}

	proposal := planProposal{
		ProposalID:   uuid.NewString(),
		StudentID:    req.StudentID,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		Plans:        sequenced,
		Warnings:     result.Warnings,
		IsValid:      result.IsValid,
		AutoAdjusted: result.AutoAdjustedCount,
		CyclePolicy:  string(cyclePolicy),
		RequestedAt:  time.Now().UTC(),
	}
	s.store.Save(proposal)

	stats := dto.PlanStats{
		TotalDays:     planCtx.PeriodDays(),
		PlannedItems:  len(sequenced),
		AutoAdjusted:  result.AutoAdjustedCount,
		WarningCount:  len(result.Warnings),
		IsValid:       result.IsValid,
		TotalContents: len(contents),
	}

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(started), len(sequenced), len(failures))
	}
	s.logger.Info("plan_generated",
		zap.String("student_id", req.StudentID),
		zap.String("proposal_id", proposal.ProposalID),
		zap.Int("planned_items", len(sequenced)),
		zap.Int("failures", len(failures)),
		zap.Bool("valid", result.IsValid),
	)

	return &dto.GeneratePlanResponse{
		ProposalID: proposal.ProposalID,
		Items:      toItemResponses(sequenced),
		Warnings:   result.Warnings,
		Stats:      stats,
	}, nil
}

// Save persists a generated proposal as a new versioned study plan.
func (s *PlanGeneratorService) Save(ctx context.Context, req dto.SavePlanRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save plan payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if !proposal.IsValid {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal contains unresolved overlaps and cannot be saved")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"warnings":     proposal.Warnings,
		"autoAdjusted": proposal.AutoAdjusted,
		"cyclePolicy":  proposal.CyclePolicy,
		"generated":    proposal.RequestedAt,
		"algorithm":    "daily_allocation_v1",
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan metadata")
		return "", err
	}

	record := &models.StudyPlan{
		StudentID:   proposal.StudentID,
		PeriodStart: proposal.PeriodStart,
		PeriodEnd:   proposal.PeriodEnd,
		Status:      models.StudyPlanStatusDraft,
		Meta:        types.JSONText(metaBytes),
	}

	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create study plan")
		return "", err
	}

	itemModels := make([]models.PlanItem, 0, len(proposal.Plans))
	for _, plan := range proposal.Plans {
		itemModels = append(itemModels, models.PlanItem{
			StudyPlanID: record.ID,
			PlanDate:    plan.PlanDate,
			ContentID:   plan.ContentID,
			RangeStart:  plan.PlannedStart,
			RangeEnd:    plan.PlannedEnd,
			StartTime:   plan.StartTime,
			EndTime:     plan.EndTime,
			BlockIndex:  plan.BlockIndex,
			CycleDay:    plan.CycleDayNumber,
			DateType:    string(plan.DateType),
			Sequence:    plan.Sequence,
		})
	}

	if err = s.items.InsertBatch(ctx, tx, itemModels); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan items")
		return "", err
	}

	if req.Publish {
		if err = s.plans.UpdateStatus(ctx, tx, record.ID, models.StudyPlanStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish study plan")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return "", err
	}

	s.store.Delete(req.ProposalID)
	s.invalidateStudentCache(ctx, proposal.StudentID)
	return record.ID, nil
}

// List returns stored plan versions for a student.
func (s *PlanGeneratorService) List(ctx context.Context, query dto.StudyPlanQuery) ([]models.StudyPlan, error) {
	if query.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}

	cacheKey := repository.PlanListKey(query.StudentID)
	if s.cache != nil {
		var cached []models.StudyPlan
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCacheLookup(true)
			return cached, nil
		} else if errors.Is(err, appErrors.ErrCacheMiss) {
			s.recordCacheLookup(false)
		} else {
			s.logger.Warn("plan list cache read failed", zap.Error(err))
		}
	}

	list, err := s.plans.ListByStudent(ctx, query.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study plans")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, list, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("plan list cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

// GetItems returns the scheduled rows of a stored plan.
func (s *PlanGeneratorService) GetItems(ctx context.Context, planID string) ([]models.PlanItem, error) {
	if planID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	if _, err := s.plans.FindByID(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	items, err := s.items.ListByPlan(ctx, planID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plan items")
	}
	return items, nil
}

// Delete removes a draft plan version and its items.
func (s *PlanGeneratorService) Delete(ctx context.Context, planID string) error {
	record, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	if record.Status != models.StudyPlanStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft plans can be deleted")
	}
	if err := s.items.DeleteByPlan(ctx, nil, planID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan items")
	}
	if err := s.plans.Delete(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete study plan")
	}
	s.invalidateStudentCache(ctx, record.StudentID)
	return nil
}

func (s *PlanGeneratorService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *PlanGeneratorService) invalidateStudentCache(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.PlanListKey(studentID)); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *PlanGeneratorService) resolveContents(ctx context.Context, studentID string, contentIDs []string) ([]planner.ContentInfo, error) {
	rows, err := s.contents.ListBySelection(ctx, studentID, contentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve contents")
	}

	found := make(map[string]bool, len(rows))
	inputs := make([]planner.ContentInput, 0, len(rows))
	for _, row := range rows {
		found[row.ID] = true
		inputs = append(inputs, planner.ContentInput{
			ContentID:       row.ID,
			ContentType:     planner.ContentType(row.ContentType),
			RangeStart:      row.RangeStart,
			RangeEnd:        row.RangeEnd,
			Subject:         row.Subject,
			SubjectCategory: row.SubjectCategory,
		})
	}
	for _, id := range contentIDs {
		if !found[id] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("content %s not found for student", id))
		}
	}

	contents, err := planner.NormalizeContents(inputs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content range")
	}
	return contents, nil
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	periodStart, err := time.Parse(layout, start)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "periodStart must be an ISO date")
	}
	periodEnd, err := time.Parse(layout, end)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "periodEnd must be an ISO date")
	}
	if periodEnd.Before(periodStart) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "periodEnd must not be before periodStart")
	}
	return periodStart, periodEnd, nil
}

func buildBlocks(study dto.TimeWindowRequest, lunch *dto.TimeWindowRequest) ([]planner.TimeBlock, error) {
	studyWindow := planner.Window{Start: study.Start, End: study.End}
	var lunchWindow *planner.Window
	if lunch != nil {
		lunchWindow = &planner.Window{Start: lunch.Start, End: lunch.End}
	}
	blocks, err := planner.BuildWeekBlocks(studyWindow, lunchWindow)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study hours")
	}
	return blocks, nil
}

func buildExclusions(reqs []dto.ExclusionRequest) ([]planner.Exclusion, error) {
	exclusions := make([]planner.Exclusion, 0, len(reqs))
	for _, r := range reqs {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid exclusion date %q", r.Date))
		}
		exclusions = append(exclusions, planner.Exclusion{
			Date:   date,
			Type:   planner.ExclusionType(r.Type),
			Reason: r.Reason,
		})
	}
	return exclusions, nil
}

func buildSubjectSettings(reqs []dto.SubjectSettingRequest) (map[string]planner.SubjectType, map[planner.SubjectType]int) {
	subjectTypes := make(map[string]planner.SubjectType, len(reqs))
	weeklyDays := make(map[planner.SubjectType]int)
	for _, r := range reqs {
		subjectType := planner.SubjectType(r.Type)
		subjectTypes[r.Subject] = subjectType
		if r.WeeklyDays > 0 {
			weeklyDays[subjectType] = r.WeeklyDays
		}
	}
	return subjectTypes, weeklyDays
}

func toItemResponses(plans []planner.ScheduledPlan) []dto.PlanItemResponse {
	items := make([]dto.PlanItemResponse, 0, len(plans))
	for _, plan := range plans {
		items = append(items, dto.PlanItemResponse{
			PlanDate:   plan.PlanDate.Format("2006-01-02"),
			ContentID:  plan.ContentID,
			RangeStart: plan.PlannedStart,
			RangeEnd:   plan.PlannedEnd,
			StartTime:  plan.StartTime,
			EndTime:    plan.EndTime,
			BlockIndex: plan.BlockIndex,
			CycleDay:   plan.CycleDayNumber,
			DateType:   string(plan.DateType),
			Sequence:   plan.Sequence,
		})
	}
	return items
}

// --- Proposal cache ---

type planProposal struct {
	ProposalID   string
	StudentID    string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Plans        []planner.ScheduledPlan
	Warnings     []planner.Warning
	IsValid      bool
	AutoAdjusted int
	CyclePolicy  string
	RequestedAt  time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]planProposal),
	}
}

func (s *proposalStore) Save(proposal planProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (planProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return planProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
