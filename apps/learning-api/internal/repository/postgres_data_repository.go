package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/jackc/pgx/v5"
)

const dataColumns = `
	id, user_id, type, content, file_original_name, file_mime_type, file_size,
	file_storage_id, file_url, ai_solution, created_at`

// PostgresDataRepository implements DataRepository using PostgreSQL
type PostgresDataRepository struct {
	db *database.PostgresDB
}

// NewPostgresDataRepository creates a new PostgreSQL data repository
func NewPostgresDataRepository(db *database.PostgresDB) *PostgresDataRepository {
	return &PostgresDataRepository{db: db}
}

// Create stores a new data item
func (r *PostgresDataRepository) Create(ctx context.Context, item *domain.DataItem) error {
	query := `
		INSERT INTO user_data (` + dataColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var name, mime, storageID, url *string
	var size *int64
	if f := item.File; f != nil {
		name, mime, storageID, url = &f.OriginalName, &f.MimeType, &f.StorageID, &f.URL
		size = &f.Size
	}

	_, err := r.db.Pool().Exec(ctx, query,
		item.ID,
		item.UserID,
		string(item.Type),
		item.Content,
		name,
		mime,
		size,
		storageID,
		url,
		item.AISolution,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create data item: %w", err)
	}
	return nil
}

// ListByUser lists all items of a user
func (r *PostgresDataRepository) ListByUser(ctx context.Context, userID string) ([]*domain.DataItem, error) {
	query := `SELECT ` + dataColumns + ` FROM user_data WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query data items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.DataItem, 0)
	for rows.Next() {
		item, err := scanDataItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate data items: %w", err)
	}

	return items, nil
}

// UpdateContent replaces the content of an item owned by userID
func (r *PostgresDataRepository) UpdateContent(ctx context.Context, userID, id, content string) (*domain.DataItem, error) {
	if !validID(id) {
		return nil, domain.ErrDataNotFound
	}

	query := `
		UPDATE user_data SET content = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + dataColumns

	item, err := scanDataItem(r.db.Pool().QueryRow(ctx, query, id, userID, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, fmt.Errorf("failed to update data item: %w", err)
	}
	return item, nil
}

// Delete deletes an item owned by userID
func (r *PostgresDataRepository) Delete(ctx context.Context, userID, id string) (*domain.DataItem, error) {
	if !validID(id) {
		return nil, domain.ErrDataNotFound
	}

	query := `DELETE FROM user_data WHERE id = $1 AND user_id = $2 RETURNING ` + dataColumns

	item, err := scanDataItem(r.db.Pool().QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, fmt.Errorf("failed to delete data item: %w", err)
	}
	return item, nil
}

func scanDataItem(row pgx.Row) (*domain.DataItem, error) {
	var item domain.DataItem
	var dataType string
	var name, mime, storageID, url *string
	var size *int64

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&dataType,
		&item.Content,
		&name,
		&mime,
		&size,
		&storageID,
		&url,
		&item.AISolution,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Type = domain.DataType(dataType)
	if storageID != nil {
		item.File = &domain.FileInfo{StorageID: *storageID}
		if name != nil {
			item.File.OriginalName = *name
		}
		if mime != nil {
			item.File.MimeType = *mime
		}
		if size != nil {
			item.File.Size = *size
		}
		if url != nil {
			item.File.URL = *url
		}
	}

	return &item, nil
}
