package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/jackc/pgx/v5"
)

const contentColumns = `id, tutor_id, kind, title, body, image_url, level, created_at, updated_at`

// PostgresContentRepository implements ContentRepository using PostgreSQL
type PostgresContentRepository struct {
	db *database.PostgresDB
}

// NewPostgresContentRepository creates a new PostgreSQL content repository
func NewPostgresContentRepository(db *database.PostgresDB) *PostgresContentRepository {
	return &PostgresContentRepository{db: db}
}

// Create creates a new content item
func (r *PostgresContentRepository) Create(ctx context.Context, content *domain.Content) error {
	query := `
		INSERT INTO tutor_content (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Pool().Exec(ctx, query,
		content.ID,
		content.TutorID,
		string(content.Kind),
		content.Title,
		content.Body,
		content.ImageURL,
		content.Level,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

// GetByID retrieves one item owned by tutorID
func (r *PostgresContentRepository) GetByID(ctx context.Context, tutorID string, kind domain.ContentKind, id string) (*domain.Content, error) {
	if !validID(id) {
		return nil, nil
	}

	query := `
		SELECT ` + contentColumns + `
		FROM tutor_content
		WHERE id = $1 AND tutor_id = $2 AND kind = $3`

	content, err := scanContent(r.db.Pool().QueryRow(ctx, query, id, tutorID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return content, nil
}

// ListByTutor lists the items of one kind owned by tutorID
func (r *PostgresContentRepository) ListByTutor(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM tutor_content
		WHERE tutor_id = $1 AND kind = $2
		ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, tutorID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Content, 0)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content: %w", err)
	}

	return items, nil
}

// Update updates an item owned by content.TutorID
func (r *PostgresContentRepository) Update(ctx context.Context, content *domain.Content) error {
	if !validID(content.ID) {
		return domain.ErrContentNotFound
	}

	query := `
		UPDATE tutor_content
		SET title = $4, body = $5, image_url = $6, level = $7, updated_at = $8
		WHERE id = $1 AND tutor_id = $2 AND kind = $3`

	result, err := r.db.Pool().Exec(ctx, query,
		content.ID,
		content.TutorID,
		string(content.Kind),
		content.Title,
		content.Body,
		content.ImageURL,
		content.Level,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// Delete deletes an item owned by tutorID
func (r *PostgresContentRepository) Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error {
	if !validID(id) {
		return domain.ErrContentNotFound
	}

	query := `DELETE FROM tutor_content WHERE id = $1 AND tutor_id = $2 AND kind = $3`

	result, err := r.db.Pool().Exec(ctx, query, id, tutorID, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	var content domain.Content
	var kind string

	err := row.Scan(
		&content.ID,
		&content.TutorID,
		&kind,
		&content.Title,
		&content.Body,
		&content.ImageURL,
		&content.Level,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	content.Kind = domain.ContentKind(kind)
	return &content, nil
}
