package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
)

// PlanItemRepository manages the scheduled rows belonging to a study plan.
type PlanItemRepository struct {
	db *sqlx.DB
}

// NewPlanItemRepository builds repository.
func NewPlanItemRepository(db *sqlx.DB) *PlanItemRepository {
	return &PlanItemRepository{db: db}
}

func (r *PlanItemRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores the sequenced rows of a plan version.
func (r *PlanItemRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, items []models.PlanItem) error {
	if len(items) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO plan_items (id, study_plan_id, plan_date, content_id, range_start, range_end, start_time, end_time, block_index, cycle_day, date_type, sequence, created_at)
VALUES (:id, :study_plan_id, :plan_date, :content_id, :range_start, :range_end, :start_time, :end_time, :block_index, :cycle_day, :date_type, :sequence, :created_at)`

	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, item); err != nil {
			return fmt.Errorf("insert plan item: %w", err)
		}
	}
	return nil
}

// ListByPlan returns rows ordered for display: by date, then sequence.
func (r *PlanItemRepository) ListByPlan(ctx context.Context, planID string) ([]models.PlanItem, error) {
	const query = `SELECT id, study_plan_id, plan_date, content_id, range_start, range_end, start_time, end_time, block_index, cycle_day, date_type, sequence, created_at
FROM plan_items WHERE study_plan_id = $1 ORDER BY plan_date ASC, sequence ASC`
	var items []models.PlanItem
	if err := r.db.SelectContext(ctx, &items, query, planID); err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	return items, nil
}

// DeleteByPlan removes all rows of a plan version.
func (r *PlanItemRepository) DeleteByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM plan_items WHERE study_plan_id = $1`
	if _, err := target.ExecContext(ctx, query, planID); err != nil {
		return fmt.Errorf("delete plan items: %w", err)
	}
	return nil
}
