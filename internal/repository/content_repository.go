package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
)

// ContentRepository resolves content selections into concrete content rows.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListBySelection loads the selected contents belonging to a student,
// preserving the selection order.
func (r *ContentRepository) ListBySelection(ctx context.Context, studentID string, contentIDs []string) ([]models.Content, error) {
	if len(contentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id, student_id, title, content_type, range_start, range_end, subject, subject_category, created_at, updated_at
FROM contents WHERE student_id = ? AND id IN (?)`, studentID, contentIDs)
	if err != nil {
		return nil, fmt.Errorf("build content selection query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.Content
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contents by selection: %w", err)
	}

	byID := make(map[string]models.Content, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Content, 0, len(rows))
	for _, id := range contentIDs {
		if content, ok := byID[id]; ok {
			ordered = append(ordered, content)
		}
	}
	return ordered, nil
}

// FindByID loads a single content row.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	const query = `SELECT id, student_id, title, content_type, range_start, range_end, subject, subject_category, created_at, updated_at
FROM contents WHERE id = $1`
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		return nil, err
	}
	return &content, nil
}
