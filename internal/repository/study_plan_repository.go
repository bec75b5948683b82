package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
)

// StudyPlanRepository persists versioned study-plan headers.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository constructs repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

func (r *StudyPlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for the student-period tuple.
func (r *StudyPlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error {
	if plan == nil {
		return fmt.Errorf("study plan payload is nil")
	}
	if plan.StudentID == "" {
		return fmt.Errorf("student_id is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.StudyPlanStatusDraft
	}
	if len(plan.Meta) == 0 {
		plan.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM study_plans WHERE student_id = $1 AND period_start = $2 AND period_end = $3`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.StudentID, plan.PeriodStart, plan.PeriodEnd); err != nil {
		return fmt.Errorf("compute next study plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO study_plans (id, student_id, period_start, period_end, version, status, meta, created_at, updated_at)
VALUES (:id, :student_id, :period_start, :period_end, :version, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}
	return nil
}

// ListByStudent returns all plan versions for a student, newest first.
func (r *StudyPlanRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudyPlan, error) {
	const query = `SELECT id, student_id, period_start, period_end, version, status, meta, created_at, updated_at
FROM study_plans WHERE student_id = $1 ORDER BY period_start DESC, version DESC`
	var plans []models.StudyPlan
	if err := r.db.SelectContext(ctx, &plans, query, studentID); err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by its identifier.
func (r *StudyPlanRepository) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	const query = `SELECT id, student_id, period_start, period_end, version, status, meta, created_at, updated_at
FROM study_plans WHERE id = $1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes a stored plan version together with its items.
func (r *StudyPlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM study_plans WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete study plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("study plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a plan.
func (r *StudyPlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudyPlanStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	if len(meta) > 0 {
		const query = `UPDATE study_plans SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		if _, err := target.ExecContext(ctx, query, status, meta, now, id); err != nil {
			return fmt.Errorf("update study plan status: %w", err)
		}
		return nil
	}

	const query = `UPDATE study_plans SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := target.ExecContext(ctx, query, status, now, id); err != nil {
		return fmt.Errorf("update study plan status: %w", err)
	}
	return nil
}
