package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"datadesk/domain/core"
	"datadesk/models"
	"datadesk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, email, COALESCE(username, '') AS username, plan_id, is_active, created_at, updated_at`

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// EnsureUser gets the user or creates it on the free plan if it doesn't exist
func (r *UserRepositoryImpl) EnsureUser(ctx context.Context, userID core.ID, email string) (*models.User, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !core.IsNotFoundError(err) {
		return nil, err
	}

	created := models.User{
		ID:       userID,
		Email:    email,
		PlanID:   models.FreePlanID,
		IsActive: true,
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, plan_id, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :plan_id, :is_active, NOW(), NOW())
	`, created)
	if err != nil {
		// Another request may have created the user first
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return r.GetUserByID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(ctx, userID)
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID core.ID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("user", userID.String())
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetPlan retrieves a plan by its ID
func (r *UserRepositoryImpl) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.GetContext(ctx, &plan, `SELECT id, name, max_files FROM plans WHERE id = $1`, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("plan", planID)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}
