package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
)

// CommentRepository provides database access for reviewer comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new reviewer comment.
func (r *CommentRepository) Create(ctx context.Context, c *models.ReviewerComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO reviewer_comments (id, manifesto_id, reviewer_name, content, created_at)
VALUES (:id, :manifesto_id, :reviewer_name, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create reviewer comment: %w", err)
	}
	return nil
}

// ListByManifesto returns comments on a manifesto, newest first.
func (r *CommentRepository) ListByManifesto(ctx context.Context, manifestoID string) ([]models.ReviewerComment, error) {
	const query = `SELECT id, manifesto_id, reviewer_name, content, created_at
FROM reviewer_comments
WHERE manifesto_id = $1
ORDER BY created_at DESC`
	var items []models.ReviewerComment
	if err := r.db.SelectContext(ctx, &items, query, manifestoID); err != nil {
		return nil, fmt.Errorf("list reviewer comments: %w", err)
	}
	return items, nil
}

// ListAllDetail returns every comment joined with manifesto and candidate
// context, for export.
func (r *CommentRepository) ListAllDetail(ctx context.Context) ([]models.ReviewerCommentDetail, error) {
	const query = `SELECT rc.id, rc.manifesto_id, rc.reviewer_name, rc.content, rc.created_at,
       m.phase AS phase, u.name AS candidate_name, u.email AS candidate_email
FROM reviewer_comments rc
JOIN manifestos m ON m.id = rc.manifesto_id
JOIN nominations n ON n.id = m.nomination_id
JOIN users u ON u.id = n.user_id
ORDER BY rc.created_at DESC`
	var items []models.ReviewerCommentDetail
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list reviewer comments detail: %w", err)
	}
	return items, nil
}
