package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlans(t *testing.T) {
	plans := DefaultPlans(3)
	require.NotEmpty(t, plans)

	assert.Equal(t, FreePlanID, plans[0].ID)
	assert.Equal(t, 3, plans[0].MaxFiles)

	seen := map[string]bool{}
	for _, p := range plans {
		assert.False(t, seen[p.ID], "duplicate plan %s", p.ID)
		seen[p.ID] = true
		assert.Positive(t, p.MaxFiles)
	}
}

func TestUser_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(User{Email: "a@example.com", PlanID: FreePlanID, IsActive: true})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "a@example.com", fields["email"])
	assert.Equal(t, FreePlanID, fields["plan_id"])
	assert.Equal(t, true, fields["is_active"])
}
