package crdt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
)

func createTestTask(title string, updatedAt time.Time) *models.Task {
	return &models.Task{
		ID:         "task-1",
		Title:      title,
		SyncStatus: models.SyncStatusPending,
		CreatedAt:  updatedAt.Add(-time.Hour),
		UpdatedAt:  updatedAt,
	}
}

func TestResolve(t *testing.T) {
	t1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		local    *models.Task
		remote   *models.Task
		name     string
		wantSide Side
		wantName string
	}{
		{
			name:     "local newer wins",
			local:    createTestTask("local", t1.Add(time.Second)),
			remote:   createTestTask("remote", t1),
			wantSide: SideLocal,
			wantName: "local",
		},
		{
			name:     "remote newer wins",
			local:    createTestTask("local", t1),
			remote:   createTestTask("remote", t1.Add(time.Nanosecond)),
			wantSide: SideRemote,
			wantName: "remote",
		},
		{
			name:     "equal timestamps prefer local",
			local:    createTestTask("local", t1),
			remote:   createTestTask("remote", t1),
			wantSide: SideLocal,
			wantName: "local",
		},
		{
			name:     "equal instants in different zones prefer local",
			local:    createTestTask("local", t1),
			remote:   createTestTask("remote", t1.In(time.FixedZone("MSK", 3*3600))),
			wantSide: SideLocal,
			wantName: "local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.local, tt.remote)
			require.NotNil(t, res.Winner)
			assert.Equal(t, tt.wantSide, res.Side)
			assert.Equal(t, tt.wantName, res.Winner.Title)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for offset := -3; offset <= 3; offset++ {
		local := createTestTask("local", base)
		remote := createTestTask("remote", base.Add(time.Duration(offset)*time.Millisecond))

		first := Resolve(local, remote)
		second := Resolve(local, remote)
		assert.Equal(t, first.Side, second.Side)

		// local при T1 >= T2, remote при T2 > T1
		if offset > 0 {
			assert.Equal(t, SideRemote, first.Side)
		} else {
			assert.Equal(t, SideLocal, first.Side)
		}
	}
}

func TestResolve_NoSideEffects(t *testing.T) {
	base := time.Now()
	local := createTestTask("local", base)
	remote := createTestTask("remote", base.Add(time.Minute))

	res := Resolve(local, remote)
	res.Winner.Title = "modified"

	assert.Equal(t, "local", local.Title)
	assert.Equal(t, "remote", remote.Title)
}
