package models

import (
	"time"

	"datadesk/domain/core"
)

// FreePlanID is assigned to users on first sight
const FreePlanID = "free"

// User represents a system user
type User struct {
	ID        core.ID   `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	PlanID    string    `json:"plan_id" db:"plan_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Plan caps how many files a user may keep stored at once
type Plan struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	MaxFiles int    `json:"max_files" db:"max_files"`
}

// DefaultPlans are seeded by the migration runner
func DefaultPlans(freeFiles int) []Plan {
	return []Plan{
		{ID: FreePlanID, Name: "Free", MaxFiles: freeFiles},
		{ID: "pro", Name: "Pro", MaxFiles: 100},
		{ID: "team", Name: "Team", MaxFiles: 1000},
	}
}
