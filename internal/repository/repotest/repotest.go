// Package repotest holds behavior checks shared by every event and
// assignment backend.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
)

// Stamp is a fixed timestamp with no sub-second part, so values survive every
// backend unchanged.
var Stamp = time.Date(2024, 12, 1, 18, 30, 0, 0, time.UTC)

func NewEvent(name string, participants ...string) dao.Event {
	if participants == nil {
		participants = []string{}
	}
	return dao.Event{
		Name:             name,
		Description:      "Gift exchange " + name,
		Price:            "20 EUR",
		Theme:            "Books",
		RegistrationOpen: true,
		Participants:     participants,
		CreatedAt:        Stamp,
		UpdatedAt:        Stamp,
	}
}

func NewAssignment(eventName string, names ...string) dao.Assignment {
	pairs := make([]dao.Pair, len(names))
	for i, n := range names {
		pairs[i] = dao.Pair{Giver: n, Receiver: names[(i+1)%len(names)]}
	}
	return dao.Assignment{
		EventName: eventName,
		DrawID:    "draw-" + eventName,
		Pairs:     pairs,
		DrawnAt:   Stamp,
	}
}

// RunEventDAO checks the List/ReplaceAll/Append contract. newDAO must return
// an empty backend on every call.
func RunEventDAO(t *testing.T, newDAO func(t *testing.T) repository.EventDAO) {
	ctx := context.Background()

	t.Run("empty backend lists nothing", func(t *testing.T) {
		d := newDAO(t)

		events, err := d.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("append keeps order and fields", func(t *testing.T) {
		d := newDAO(t)

		require.NoError(t, d.Append(ctx, NewEvent("b", "Ana", "Bo")))
		require.NoError(t, d.Append(ctx, NewEvent("a")))
		require.NoError(t, d.Append(ctx, NewEvent("c", "Cid")))

		events, err := d.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "b", events[0].Name)
		assert.Equal(t, "a", events[1].Name)
		assert.Equal(t, "c", events[2].Name)
		assert.Equal(t, []string{"Ana", "Bo"}, events[0].Participants)
		assert.Empty(t, events[1].Participants)
		assert.Equal(t, "Gift exchange b", events[0].Description)
		assert.True(t, events[0].RegistrationOpen)
		assert.True(t, Stamp.Equal(events[0].CreatedAt))
	})

	t.Run("append rejects a duplicate name", func(t *testing.T) {
		d := newDAO(t)

		require.NoError(t, d.Append(ctx, NewEvent("a", "Ana")))
		err := d.Append(ctx, NewEvent("a"))
		require.ErrorIs(t, err, dao.ErrEventNameExists)

		events, err := d.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []string{"Ana"}, events[0].Participants)
	})

	t.Run("replace all swaps the collection", func(t *testing.T) {
		d := newDAO(t)

		require.NoError(t, d.Append(ctx, NewEvent("old")))

		closed := NewEvent("y", "Bo", "Ana")
		closed.RegistrationOpen = false
		require.NoError(t, d.ReplaceAll(ctx, []dao.Event{closed, NewEvent("x")}))

		events, err := d.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "y", events[0].Name)
		assert.False(t, events[0].RegistrationOpen)
		assert.Equal(t, []string{"Bo", "Ana"}, events[0].Participants)
		assert.Equal(t, "x", events[1].Name)

		require.NoError(t, d.ReplaceAll(ctx, nil))
		events, err = d.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("names with separators round trip", func(t *testing.T) {
		d := newDAO(t)

		e := NewEvent("a|b,c", `Ana "A" Ng`, "Bo|Bo", "Cid,Jr", "Dee-Dee")
		e.Description = "line one\nline two | with pipes"
		require.NoError(t, d.Append(ctx, e))

		events, err := d.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, e.Name, events[0].Name)
		assert.Equal(t, e.Description, events[0].Description)
		assert.Equal(t, e.Participants, events[0].Participants)
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		d := newDAO(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, d.Append(ctx, NewEvent(fmt.Sprintf("event-%d", i))))
			}(i)
		}
		wg.Wait()

		events, err := d.List(ctx)
		require.NoError(t, err)
		assert.Len(t, events, 10)
	})
}

// RunAssignmentDAO checks the Find/Save/Delete contract.
func RunAssignmentDAO(t *testing.T, newDAO func(t *testing.T) repository.AssignmentDAO) {
	ctx := context.Background()

	t.Run("missing record is not found", func(t *testing.T) {
		d := newDAO(t)

		_, err := d.Find(ctx, "missing")
		assert.ErrorIs(t, err, dao.ErrNotFound)
	})

	t.Run("save then find", func(t *testing.T) {
		d := newDAO(t)

		want := NewAssignment("party", "Ana", "Bo", "Cid")
		require.NoError(t, d.Save(ctx, want))

		got, err := d.Find(ctx, "party")
		require.NoError(t, err)
		assert.Equal(t, want.EventName, got.EventName)
		assert.Equal(t, want.DrawID, got.DrawID)
		assert.Equal(t, want.Pairs, got.Pairs)
		assert.True(t, want.DrawnAt.Equal(got.DrawnAt))
	})

	t.Run("save replaces only its own record", func(t *testing.T) {
		d := newDAO(t)

		require.NoError(t, d.Save(ctx, NewAssignment("one", "Ana", "Bo")))
		require.NoError(t, d.Save(ctx, NewAssignment("two", "Cid", "Dee", "Eve")))

		replaced := NewAssignment("one", "Bo", "Ana", "Fay")
		replaced.DrawID = "draw-one-again"
		require.NoError(t, d.Save(ctx, replaced))

		got, err := d.Find(ctx, "one")
		require.NoError(t, err)
		assert.Equal(t, "draw-one-again", got.DrawID)
		assert.Len(t, got.Pairs, 3)

		other, err := d.Find(ctx, "two")
		require.NoError(t, err)
		assert.Equal(t, NewAssignment("two", "Cid", "Dee", "Eve").Pairs, other.Pairs)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		d := newDAO(t)

		require.NoError(t, d.Save(ctx, NewAssignment("party", "Ana", "Bo")))

		deleted, err := d.Delete(ctx, "party")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = d.Delete(ctx, "party")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = d.Find(ctx, "party")
		assert.ErrorIs(t, err, dao.ErrNotFound)
	})

	t.Run("event names are opaque keys", func(t *testing.T) {
		d := newDAO(t)

		names := []string{"a/b", "../escape", "a b|c", "Ünïcode", strings.Repeat("聖", 100)}
		for _, name := range names {
			require.NoError(t, d.Save(ctx, NewAssignment(name, "Ana", "Bo")))
			got, err := d.Find(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, name, got.EventName)
		}
	})
}
