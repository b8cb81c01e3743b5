package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/pkg/random"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/memstore"
)

var errDiskFull = errors.New("disk full")

// flakyAssignments fails the next failSaves calls to Save and the next
// failDeletes calls to Delete.
type flakyAssignments struct {
	*memstore.AssignmentStore

	mu          sync.Mutex
	failSaves   int
	failDeletes int
}

func (f *flakyAssignments) Save(ctx context.Context, a dao.Assignment) error {
	if f.take(&f.failSaves) {
		return errDiskFull
	}
	return f.AssignmentStore.Save(ctx, a)
}

func (f *flakyAssignments) Delete(ctx context.Context, eventName string) (bool, error) {
	if f.take(&f.failDeletes) {
		return false, errDiskFull
	}
	return f.AssignmentStore.Delete(ctx, eventName)
}

func (f *flakyAssignments) failNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = n
}

func (f *flakyAssignments) failNextDelete(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDeletes = n
}

func (f *flakyAssignments) take(counter *int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if *counter > 0 {
		*counter--
		return true
	}
	return false
}

// flakyEvents fails the next failReplaces calls to ReplaceAll.
type flakyEvents struct {
	*memstore.EventStore

	mu           sync.Mutex
	failReplaces int
}

func (f *flakyEvents) ReplaceAll(ctx context.Context, events []dao.Event) error {
	f.mu.Lock()
	if f.failReplaces > 0 {
		f.failReplaces--
		f.mu.Unlock()
		return errDiskFull
	}
	f.mu.Unlock()

	return f.EventStore.ReplaceAll(ctx, events)
}

func (f *flakyEvents) failNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReplaces = n
}

func newDrawService(t *testing.T, assignments repository.AssignmentDAO) *DrawService {
	t.Helper()

	svc, err := NewDrawService(repository.NewAssignmentRepository(assignments), WithRand(random.NewSeeded(42)))
	require.NoError(t, err)

	return svc
}

func newServices(t *testing.T) (*EventService, *DrawService) {
	t.Helper()

	draws := newDrawService(t, memstore.NewAssignmentStore())
	events := NewEventService(repository.NewEventRepository(memstore.NewEventStore()), draws)

	return events, draws
}

// newFlakyServices wires both services over stores that can be told to fail.
func newFlakyServices(t *testing.T) (*EventService, *DrawService, *flakyEvents, *flakyAssignments) {
	t.Helper()

	assignments := &flakyAssignments{AssignmentStore: memstore.NewAssignmentStore()}
	eventStore := &flakyEvents{EventStore: memstore.NewEventStore()}
	draws := newDrawService(t, assignments)
	events := NewEventService(repository.NewEventRepository(eventStore), draws)

	return events, draws, eventStore, assignments
}
