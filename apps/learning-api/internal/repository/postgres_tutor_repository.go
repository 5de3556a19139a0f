package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresTutorRepository implements TutorRepository using PostgreSQL
type PostgresTutorRepository struct {
	db *database.PostgresDB
}

// NewPostgresTutorRepository creates a new PostgreSQL tutor repository
func NewPostgresTutorRepository(db *database.PostgresDB) *PostgresTutorRepository {
	return &PostgresTutorRepository{db: db}
}

// FindByID retrieves a tutor by ID
func (r *PostgresTutorRepository) FindByID(ctx context.Context, id string) (*domain.Tutor, error) {
	if !validID(id) {
		return nil, nil
	}

	query := `
		SELECT id, name, subject, expertise, years_experience, rating, description,
		       image_url, email, password_hash, created_at, updated_at
		FROM tutors
		WHERE id = $1`

	return r.scanTutor(r.db.Pool().QueryRow(ctx, query, id))
}

// FindByEmail retrieves a tutor by email
func (r *PostgresTutorRepository) FindByEmail(ctx context.Context, email string) (*domain.Tutor, error) {
	query := `
		SELECT id, name, subject, expertise, years_experience, rating, description,
		       image_url, email, password_hash, created_at, updated_at
		FROM tutors
		WHERE email = $1`

	return r.scanTutor(r.db.Pool().QueryRow(ctx, query, email))
}

// Insert creates a new tutor
func (r *PostgresTutorRepository) Insert(ctx context.Context, tutor *domain.Tutor) error {
	query := `
		INSERT INTO tutors (
			id, name, subject, expertise, years_experience, rating, description,
			image_url, email, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Pool().Exec(ctx, query,
		tutor.ID,
		tutor.Name,
		tutor.Subject,
		tutor.Expertise,
		tutor.YearsExperience,
		tutor.Rating,
		tutor.Description,
		tutor.ImageURL,
		tutor.Email,
		tutor.PasswordHash,
		tutor.CreatedAt,
		tutor.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrTutorExists
		}
		return fmt.Errorf("failed to create tutor: %w", err)
	}

	return nil
}

func (r *PostgresTutorRepository) scanTutor(row pgx.Row) (*domain.Tutor, error) {
	var tutor domain.Tutor

	err := row.Scan(
		&tutor.ID,
		&tutor.Name,
		&tutor.Subject,
		&tutor.Expertise,
		&tutor.YearsExperience,
		&tutor.Rating,
		&tutor.Description,
		&tutor.ImageURL,
		&tutor.Email,
		&tutor.PasswordHash,
		&tutor.CreatedAt,
		&tutor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan tutor: %w", err)
	}

	return &tutor, nil
}
