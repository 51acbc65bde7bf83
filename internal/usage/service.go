package usage

import (
	"context"
	"fmt"

	"datadesk/domain/core"
	"datadesk/ports"
)

// Service answers plan quota questions by comparing a user's plan limit
// with the number of files they currently store
type Service struct {
	users ports.UserRepository
	files ports.FileRepository
}

// NewService creates a new usage service
func NewService(users ports.UserRepository, files ports.FileRepository) *Service {
	return &Service{users: users, files: files}
}

// Summary is a user's current plan usage
type Summary struct {
	PlanID    string `json:"plan_id"`
	PlanName  string `json:"plan_name"`
	MaxFiles  int    `json:"max_files"`
	UsedFiles int    `json:"used_files"`
	Remaining int    `json:"remaining"`
}

// RemainingUploads implements ports.QuotaProvider. It never returns a
// negative count, even when a downgraded plan leaves a user over quota.
func (s *Service) RemainingUploads(ctx context.Context, ownerID core.ID) (int, error) {
	summary, err := s.GetSummary(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return summary.Remaining, nil
}

// GetSummary returns plan limits and current usage for a user
func (s *Service) GetSummary(ctx context.Context, ownerID core.ID) (*Summary, error) {
	user, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", ownerID, err)
	}
	plan, err := s.users.GetPlan(ctx, user.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", user.PlanID, err)
	}
	used, err := s.files.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	remaining := plan.MaxFiles - used
	if remaining < 0 {
		remaining = 0
	}
	return &Summary{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		MaxFiles:  plan.MaxFiles,
		UsedFiles: used,
		Remaining: remaining,
	}, nil
}
