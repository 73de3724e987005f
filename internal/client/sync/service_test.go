package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/client/storage/boltdb"
	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, client APIClient, cfg Config) (*service, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	svc, ok := NewService(client, store, store, store, cfg, testLogger()).(*service)
	require.True(t, ok)
	svc.now = func() time.Time { return testNow }

	return svc, store
}

// seedTask сохраняет задачу и элемент очереди create так, как это делает сервис задач
func seedTask(t *testing.T, store *boltdb.Storage, id, title string, updatedAt time.Time) (*models.Task, *models.QueueItem) {
	t.Helper()

	task := &models.Task{
		ID:         id,
		Title:      title,
		SyncStatus: models.SyncStatusPending,
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
	}
	item := NewQueueItem(id, models.OperationCreate, task, updatedAt)
	require.NoError(t, store.CommitMutation(context.Background(), task, item))

	return task, item
}

func healthyAPI(syncFn func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error)) *APIClientMock {
	return &APIClientMock{
		HealthFunc: func(ctx context.Context) error { return nil },
		SyncFunc:   syncFn,
	}
}

// respondAll отвечает одинаковым статусом на каждый элемент батча
func respondAll(status api.ItemStatus) func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
	return func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		resp := &api.BatchSyncResponse{}
		for _, item := range req.Items {
			p := api.ProcessedItem{ClientID: item.ID, Status: status}
			switch status {
			case api.ItemStatusSuccess:
				p.ServerID = "srv-" + item.TaskID
			case api.ItemStatusError:
				p.Error = "validation failed"
			}
			resp.ProcessedItems = append(resp.ProcessedItems, p)
		}
		return resp, nil
	}
}

func TestNewService(t *testing.T) {
	mockAPI := healthyAPI(respondAll(api.ItemStatusSuccess))
	svc, _ := newTestService(t, mockAPI, DefaultConfig())

	assert.Equal(t, mockAPI, svc.apiClient)
	assert.Equal(t, DefaultConfig(), svc.cfg)
	assert.NotNil(t, svc.logger)

	// Нулевые размер батча и таймаут заменяются значениями по умолчанию,
	// MaxRetries=0 допустим и означает отсутствие повторов
	svc, _ = newTestService(t, mockAPI, Config{})
	assert.Equal(t, Config{BatchSize: DefaultBatchSize, ProbeTimeout: DefaultProbeTimeout}, svc.cfg)

	svc, _ = newTestService(t, mockAPI, Config{BatchSize: 2, MaxRetries: 0, ProbeTimeout: time.Second})
	assert.Equal(t, 2, svc.cfg.BatchSize)
	assert.Equal(t, 0, svc.cfg.MaxRetries)
	assert.Equal(t, time.Second, svc.cfg.ProbeTimeout)
}

func TestPartition(t *testing.T) {
	makeItems := func(n int) []*models.QueueItem {
		items := make([]*models.QueueItem, n)
		for i := range items {
			items[i] = &models.QueueItem{ID: fmt.Sprintf("item-%02d", i)}
		}
		return items
	}

	tests := []struct {
		name      string
		wantSizes []int
		items     int
		size      int
	}{
		{name: "empty", items: 0, size: 10, wantSizes: []int{}},
		{name: "single item", items: 1, size: 10, wantSizes: []int{1}},
		{name: "exact multiple", items: 20, size: 10, wantSizes: []int{10, 10}},
		{name: "remainder", items: 25, size: 10, wantSizes: []int{10, 10, 5}},
		{name: "batch size one", items: 3, size: 1, wantSizes: []int{1, 1, 1}},
		{name: "non positive size falls back to default", items: 11, size: 0, wantSizes: []int{10, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := makeItems(tt.items)
			batches := partition(items, tt.size)

			sizes := make([]int, 0, len(batches))
			var flat []*models.QueueItem
			for _, b := range batches {
				sizes = append(sizes, len(b))
				flat = append(flat, b...)
			}
			assert.Equal(t, tt.wantSizes, sizes)
			// Порядок элементов сохраняется
			if tt.items > 0 {
				assert.Equal(t, items, flat)
			}
		})
	}
}

func TestSync_ServerUnreachable(t *testing.T) {
	mockAPI := &APIClientMock{
		HealthFunc: func(ctx context.Context) error { return errors.New("connection refused") },
		SyncFunc:   respondAll(api.ItemStatusSuccess),
	}
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.SyncedItems)
	assert.Zero(t, result.FailedItems)
	assert.Empty(t, result.Errors)
	assert.Empty(t, mockAPI.SyncCalls())

	// Очередь не тронута
	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Zero(t, items[0].RetryCount)
	assert.Empty(t, items[0].ErrorMessage)
}

func TestSync_EmptyQueueIsIdempotent(t *testing.T) {
	mockAPI := healthyAPI(respondAll(api.ItemStatusSuccess))
	svc, _ := newTestService(t, mockAPI, DefaultConfig())

	for range 2 {
		result, err := svc.Sync(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Zero(t, result.SyncedItems)
		assert.Zero(t, result.FailedItems)
		assert.Zero(t, result.Batches)
	}
	assert.Empty(t, mockAPI.SyncCalls())
}

func TestSync_QueueReadFailure(t *testing.T) {
	mockAPI := healthyAPI(respondAll(api.ItemStatusSuccess))
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	require.NoError(t, store.Close())

	result, err := svc.Sync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.Nil(t, result)
}

func TestSync_Success(t *testing.T) {
	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		require.Len(t, req.Items, 1)
		assert.Equal(t, "create", req.Items[0].Operation)
		assert.Equal(t, "Buy milk", req.Items[0].Data.Title)
		assert.True(t, testNow.Equal(req.ClientTimestamp))
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{
			{ClientID: req.Items[0].ID, Status: api.ItemStatusSuccess, ServerID: "srv-42"},
		}}, nil
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedItems)
	assert.Zero(t, result.FailedItems)
	assert.Equal(t, 1, result.Batches)

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, task.SyncStatus)
	assert.Equal(t, "srv-42", task.ServerID)
	require.NotNil(t, task.LastSyncedAt)
	assert.True(t, testNow.Equal(*task.LastSyncedAt))

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	lastSynced, err := store.GetLastSyncedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, lastSynced)
	assert.True(t, testNow.Equal(*lastSynced))
}

func TestSync_ConflictRemoteWins(t *testing.T) {
	t1 := testNow.Add(-2 * time.Hour)
	t2 := testNow.Add(-time.Hour)

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{{
			ClientID: req.Items[0].ID,
			Status:   api.ItemStatusConflict,
			ResolvedData: &api.Task{
				ID:          "task-1",
				Title:       "Buy oat milk",
				Description: "from another device",
				Completed:   true,
				CreatedAt:   t1,
				UpdatedAt:   t2,
				ServerID:    "srv-1",
			},
		}}}, nil
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", t1)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedItems)

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", task.Title)
	assert.Equal(t, "from another device", task.Description)
	assert.True(t, task.Completed)
	assert.True(t, t2.Equal(task.UpdatedAt))
	assert.Equal(t, "srv-1", task.ServerID)
	assert.Equal(t, models.SyncStatusSynced, task.SyncStatus)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSync_ConflictTieKeepsLocal(t *testing.T) {
	t1 := testNow.Add(-time.Hour)

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{{
			ClientID:     req.Items[0].ID,
			Status:       api.ItemStatusConflict,
			ResolvedData: &api.Task{ID: "task-1", Title: "server title", UpdatedAt: t1, CreatedAt: t1, ServerID: "srv-1"},
		}}}, nil
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-1", "local title", t1)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SyncedItems)

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "local title", task.Title)
	assert.Equal(t, "srv-1", task.ServerID)
	assert.Equal(t, models.SyncStatusSynced, task.SyncStatus)
}

func TestSync_ConflictOnSoftDeletedTask(t *testing.T) {
	t1 := testNow.Add(-time.Hour)

	tests := []struct {
		name        string
		remoteAt    time.Time
		wantTitle   string
		wantDeleted bool
	}{
		{
			name:        "newer remote undeletes",
			remoteAt:    testNow,
			wantTitle:   "server",
			wantDeleted: false,
		},
		{
			name:        "newer local delete wins",
			remoteAt:    t1.Add(30 * time.Second),
			wantTitle:   "local",
			wantDeleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
				resp := &api.BatchSyncResponse{}
				for _, item := range req.Items {
					resp.ProcessedItems = append(resp.ProcessedItems, api.ProcessedItem{
						ClientID:     item.ID,
						Status:       api.ItemStatusConflict,
						ResolvedData: &api.Task{ID: "task-1", Title: "server", CreatedAt: t1, UpdatedAt: tt.remoteAt, ServerID: "srv-1"},
					})
				}
				return resp, nil
			})
			svc, store := newTestService(t, mockAPI, DefaultConfig())
			ctx := context.Background()

			task, _ := seedTask(t, store, "task-1", "local", t1)

			// Пользователь удалил задачу после постановки create в очередь
			deleted := task.Clone()
			deleted.IsDeleted = true
			deleted.UpdatedAt = t1.Add(time.Minute)
			deleteItem := NewQueueItem(task.ID, models.OperationDelete, deleted, t1.Add(time.Minute))
			require.NoError(t, store.CommitMutation(ctx, deleted, deleteItem))

			result, err := svc.Sync(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, result.SyncedItems)
			assert.Zero(t, result.SkippedItems)
			assert.Zero(t, result.FailedItems)

			stored, err := store.GetTask(ctx, "task-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, stored.Title)
			assert.Equal(t, tt.wantDeleted, stored.IsDeleted)
			assert.Equal(t, "srv-1", stored.ServerID)
			assert.Equal(t, models.SyncStatusSynced, stored.SyncStatus)

			count, err := store.PendingCount(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestSync_ConflictLocalTaskMissing(t *testing.T) {
	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{{
			ClientID:     req.Items[0].ID,
			Status:       api.ItemStatusConflict,
			ResolvedData: &api.Task{ID: "task-1", Title: "server", UpdatedAt: testNow},
		}}}, nil
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	// Элемент очереди без записи задачи
	orphan := &models.Task{ID: "task-1", Title: "local", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, store.Enqueue(ctx, NewQueueItem("task-1", models.OperationUpdate, orphan, testNow)))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SkippedItems)
	assert.Zero(t, result.SyncedItems)
	assert.Zero(t, result.FailedItems)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// editingStorage фиксирует правку пользователя непосредственно перед разрешением конфликта
type editingStorage struct {
	*boltdb.Storage
	edit func()
}

func (s *editingStorage) ResolveConflict(ctx context.Context, item *models.QueueItem, remote *models.Task, syncedAt time.Time) (crdt.Resolution, error) {
	if s.edit != nil {
		s.edit()
		s.edit = nil
	}
	return s.Storage.ResolveConflict(ctx, item, remote, syncedAt)
}

func TestSync_ConflictKeepsEditCommittedDuringResolution(t *testing.T) {
	t1 := testNow.Add(-2 * time.Hour)
	editedAt := testNow.Add(time.Hour)

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{{
			ClientID:     req.Items[0].ID,
			Status:       api.ItemStatusConflict,
			ResolvedData: &api.Task{ID: "task-1", Title: "server", CreatedAt: t1, UpdatedAt: testNow.Add(-time.Hour), ServerID: "srv-1"},
		}}}, nil
	})

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	task, _ := seedTask(t, store, "task-1", "local", t1)

	wrapped := &editingStorage{Storage: store}
	wrapped.edit = func() {
		edited := task.Clone()
		edited.Title = "user edit mid-pass"
		edited.UpdatedAt = editedAt
		require.NoError(t, store.CommitMutation(ctx, edited, NewQueueItem(task.ID, models.OperationUpdate, edited, editedAt)))
	}

	svc, ok := NewService(mockAPI, wrapped, store, store, DefaultConfig(), testLogger()).(*service)
	require.True(t, ok)
	svc.now = func() time.Time { return testNow }

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SyncedItems)

	got, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "user edit mid-pass", got.Title)
	assert.True(t, editedAt.Equal(got.UpdatedAt))
	assert.Equal(t, "srv-1", got.ServerID)
	// Правка ещё в очереди, поэтому задача не считается синхронизированной
	assert.Equal(t, models.SyncStatusPending, got.SyncStatus)

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.OperationUpdate, items[0].Operation)
	assert.Equal(t, "user edit mid-pass", items[0].Data.Title)
}

func TestSync_RetryLimitBoundary(t *testing.T) {
	mockAPI := healthyAPI(respondAll(api.ItemStatusError))
	svc, store := newTestService(t, mockAPI, Config{MaxRetries: 3})
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	// Попытки 1..3 не превышают лимит: элемент остаётся в очереди
	for attempt := 1; attempt <= 3; attempt++ {
		result, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.FailedItems)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "validation failed", result.Errors[0].Error)
		assert.Equal(t, models.FailureRejected, result.Errors[0].Reason)

		items, err := store.AllPending(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, attempt, items[0].RetryCount)
		assert.Equal(t, "validation failed", items[0].ErrorMessage)
		assert.Equal(t, models.FailureRejected, items[0].ErrorReason)

		task, err := store.GetTask(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.SyncStatusPending, task.SyncStatus)
	}

	// Четвёртая попытка превышает лимит
	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedItems)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, task.SyncStatus)
}

func TestSync_TransportFailure(t *testing.T) {
	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		return nil, errors.New("context deadline exceeded")
	})
	svc, store := newTestService(t, mockAPI, Config{BatchSize: 2, MaxRetries: 3})
	ctx := context.Background()

	for i := range 3 {
		seedTask(t, store, fmt.Sprintf("task-%d", i), "task", testNow.Add(time.Duration(i)*time.Second))
	}

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.FailedItems)
	assert.Equal(t, 2, result.Batches)
	require.Len(t, result.Errors, 3)
	for _, e := range result.Errors {
		assert.Equal(t, models.FailureTransport, e.Reason)
		assert.Contains(t, e.Error, "deadline")
	}
	// Следующий батч отправляется даже после ошибки предыдущего
	assert.Len(t, mockAPI.SyncCalls(), 2)

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, 1, item.RetryCount)
		assert.Equal(t, models.FailureTransport, item.ErrorReason)
	}
}

func TestSync_BatchesInEnqueueOrder(t *testing.T) {
	var mu sync.Mutex
	var sent []string

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		mu.Lock()
		for _, item := range req.Items {
			sent = append(sent, item.TaskID)
		}
		mu.Unlock()
		return respondAll(api.ItemStatusSuccess)(ctx, req)
	})
	svc, store := newTestService(t, mockAPI, Config{BatchSize: 10})
	ctx := context.Background()

	var want []string
	for i := range 25 {
		id := fmt.Sprintf("task-%02d", i)
		seedTask(t, store, id, "task", testNow.Add(-time.Hour).Add(time.Duration(i)*time.Millisecond))
		want = append(want, id)
	}

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 25, result.SyncedItems)
	assert.Equal(t, 3, result.Batches)

	calls := mockAPI.SyncCalls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Req.Items, 10)
	assert.Len(t, calls[1].Req.Items, 10)
	assert.Len(t, calls[2].Req.Items, 5)
	assert.Equal(t, want, sent)
}

func TestSync_MixedOutcomes(t *testing.T) {
	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		require.Len(t, req.Items, 4)
		return &api.BatchSyncResponse{ProcessedItems: []api.ProcessedItem{
			{ClientID: req.Items[0].ID, Status: api.ItemStatusSuccess, ServerID: "srv-a"},
			{ClientID: req.Items[1].ID, Status: api.ItemStatusConflict}, // без resolved_data
			{ClientID: req.Items[2].ID, Status: "weird"},
			{ClientID: "unknown-item", Status: api.ItemStatusSuccess},
			// для четвёртого элемента результата нет
		}}, nil
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-a", "a", testNow.Add(-4*time.Minute))
	seedTask(t, store, "task-b", "b", testNow.Add(-3*time.Minute))
	seedTask(t, store, "task-c", "c", testNow.Add(-2*time.Minute))
	seedTask(t, store, "task-d", "d", testNow.Add(-1*time.Minute))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedItems)
	assert.Equal(t, 3, result.FailedItems)

	reasons := map[string]models.FailureReason{}
	for _, e := range result.Errors {
		reasons[e.TaskID] = e.Reason
	}
	assert.Equal(t, map[string]models.FailureReason{
		"task-b": models.FailureMalformed,
		"task-c": models.FailureMalformed,
		"task-d": models.FailureMissing,
	}, reasons)

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, 1, item.RetryCount)
	}
}

func TestSync_MutationDuringPassSurvives(t *testing.T) {
	var store *boltdb.Storage
	var laterItem *models.QueueItem

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		// Пользователь меняет задачу, пока батч в полёте
		task, err := store.GetTask(ctx, "task-1")
		require.NoError(t, err)
		task.Title = "Buy milk and bread"
		task.UpdatedAt = testNow
		task.SyncStatus = models.SyncStatusPending
		laterItem = NewQueueItem(task.ID, models.OperationUpdate, task, testNow)
		require.NoError(t, store.CommitMutation(ctx, task, laterItem))

		return respondAll(api.ItemStatusSuccess)(ctx, req)
	})
	svc, s := newTestService(t, mockAPI, DefaultConfig())
	store = s
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SyncedItems)

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, laterItem.ID, items[0].ID)
	assert.Equal(t, "Buy milk and bread", items[0].Data.Title)
}

func TestSync_RejectsConcurrentPass(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	mockAPI := healthyAPI(func(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		close(started)
		<-release
		return respondAll(api.ItemStatusSuccess)(ctx, req)
	})
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	var wg sync.WaitGroup
	var first *models.SyncResult
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstErr = svc.Sync(ctx)
	}()

	<-started
	second, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Nil(t, second)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, first.SyncedItems)

	// После завершения прохода новый проход разрешён
	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestSync_CancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockAPI := healthyAPI(func(c context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
		cancel()
		return respondAll(api.ItemStatusSuccess)(c, req)
	})
	svc, store := newTestService(t, mockAPI, Config{BatchSize: 1})

	seedTask(t, store, "task-1", "first", testNow.Add(-2*time.Minute))
	seedTask(t, store, "task-2", "second", testNow.Add(-time.Minute))

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Batches)
	assert.Equal(t, 1, result.SyncedItems)
	assert.Len(t, mockAPI.SyncCalls(), 1)

	items, err := store.AllPending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "task-2", items[0].TaskID)
	assert.Zero(t, items[0].RetryCount)
}

func TestCheckConnectivity(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		svc, _ := newTestService(t, healthyAPI(nil), DefaultConfig())
		assert.True(t, svc.CheckConnectivity(context.Background()))
	})

	t.Run("timeout means unreachable", func(t *testing.T) {
		mockAPI := &APIClientMock{
			HealthFunc: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}
		svc, _ := newTestService(t, mockAPI, Config{ProbeTimeout: 20 * time.Millisecond})

		start := time.Now()
		assert.False(t, svc.CheckConnectivity(context.Background()))
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestEnqueue_FreezesPayload(t *testing.T) {
	svc, store := newTestService(t, healthyAPI(nil), DefaultConfig())
	ctx := context.Background()

	task, _ := seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	item, err := svc.Enqueue(ctx, task.ID, models.OperationUpdate, task)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, item.ID)
	assert.Zero(t, item.RetryCount)
	assert.Empty(t, item.ErrorMessage)
	assert.True(t, testNow.Equal(item.CreatedAt))

	task.Title = "changed after enqueue"

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.OperationCreate, items[0].Operation)
	assert.Equal(t, models.OperationUpdate, items[1].Operation)
	assert.Equal(t, "Buy milk", items[1].Data.Title)

	_, err = svc.Enqueue(ctx, task.ID, models.OperationUpdate, nil)
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	reachable := true
	mockAPI := &APIClientMock{
		HealthFunc: func(ctx context.Context) error {
			if reachable {
				return nil
			}
			return errors.New("down")
		},
		SyncFunc: respondAll(api.ItemStatusSuccess),
	}
	svc, store := newTestService(t, mockAPI, DefaultConfig())
	ctx := context.Background()

	report, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.PendingCount)
	assert.Nil(t, report.LastSyncedAt)
	assert.True(t, report.ServerReachable)

	seedTask(t, store, "task-1", "a", testNow.Add(-time.Hour))
	seedTask(t, store, "task-2", "b", testNow.Add(-time.Hour))

	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	seedTask(t, store, "task-3", "c", testNow)

	reachable = false
	report, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PendingCount)
	require.NotNil(t, report.LastSyncedAt)
	assert.True(t, testNow.Equal(*report.LastSyncedAt))
	assert.False(t, report.ServerReachable)
}

func TestRequeue(t *testing.T) {
	mockAPI := healthyAPI(respondAll(api.ItemStatusError))
	svc, store := newTestService(t, mockAPI, Config{MaxRetries: 0})
	ctx := context.Background()

	seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))

	// Задача не в статусе error
	_, err := svc.Requeue(ctx, "task-1")
	assert.ErrorIs(t, err, ErrTaskNotFailed)

	// При MaxRetries=0 первая же ошибка окончательная
	_, err = svc.Sync(ctx)
	require.NoError(t, err)

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	require.Equal(t, models.SyncStatusError, task.SyncStatus)

	item, err := svc.Requeue(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.OperationCreate, item.Operation)

	task, err = store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, task.SyncStatus)

	items, err := store.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
	assert.Zero(t, items[0].RetryCount)

	_, err = svc.Requeue(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)
}

func TestDiscard(t *testing.T) {
	svc, store := newTestService(t, healthyAPI(nil), DefaultConfig())
	ctx := context.Background()

	task, _ := seedTask(t, store, "task-1", "Buy milk", testNow.Add(-time.Hour))
	seedTask(t, store, "task-2", "Other", testNow.Add(-time.Hour))
	_, err := svc.Enqueue(ctx, task.ID, models.OperationUpdate, task)
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, "task-1"))

	items, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "task-2", items[0].TaskID)

	assert.ErrorIs(t, svc.Discard(ctx, "missing"), storage.ErrTaskNotFound)
}
