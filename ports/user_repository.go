package ports

import (
	"context"

	"datadesk/domain/core"
	"datadesk/models"
)

// UserRepository defines the interface for user and plan data
type UserRepository interface {
	// EnsureUser returns the user, creating it on the free plan the first
	// time an authenticated identity is seen
	EnsureUser(ctx context.Context, userID core.ID, email string) (*models.User, error)

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, userID core.ID) (*models.User, error)

	// GetPlan retrieves a plan by its ID
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
}

// QuotaProvider reports how many more files an owner may upload
type QuotaProvider interface {
	RemainingUploads(ctx context.Context, ownerID core.ID) (int, error)
}
