package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/infrastructure/logging"
)

func TestInMemoryEventStore_VersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore(logging.Discard())

	require.NoError(t, store.AppendEvent("run-1", NewPlanForecastedEvent("run-1", 2, 60, 30)))
	require.NoError(t, store.AppendEvent("run-2", NewPlanForecastedEvent("run-2", 1, 30, 30)))
	require.NoError(t, store.AppendEvent("run-1", NewPlanScoredEvent("run-1", entities.ScoredPlan{Score: 12.5})))

	run1, err := store.ReadEvents("run-1", 0)
	require.NoError(t, err)
	require.Len(t, run1, 2)
	assert.Equal(t, 1, run1[0].Version())
	assert.Equal(t, 2, run1[1].Version())
	assert.Equal(t, PlanScoredEvent, run1[1].Type())
	assert.Equal(t, 12.5, run1[1].Data().(PlanScored).Scored.Score)

	fromTwo, err := store.ReadEvents("run-1", 2)
	require.NoError(t, err)
	assert.Len(t, fromTwo, 1)

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	missing, err := store.ReadEvents("unknown", 1)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestInMemoryEventStore_RejectsEmptyStream(t *testing.T) {
	store := NewInMemoryEventStore(logging.Discard())
	assert.Error(t, store.AppendEvent("", NewEvent(PlanScoredEvent, "", nil)))
}

func TestInMemoryEventStore_Subscribers(t *testing.T) {
	store := NewInMemoryEventStore(logging.Discard())
	var seen []string
	handler := &HandlerFunc{
		Types: []string{ShortageIdentifiedEvent},
		Fn: func(e Event) error {
			seen = append(seen, e.StreamID())
			return errors.New("handler failures are logged only")
		},
	}
	require.NoError(t, store.Subscribe([]string{ShortageIdentifiedEvent}, handler))

	shortage := entities.Shortage{ItemID: "SKU_A", Demand: 10, Reason: entities.ShortageNoOffer}
	require.NoError(t, store.AppendEvent("run-1", NewShortageIdentifiedEvent("run-1", shortage)))
	require.NoError(t, store.AppendEvent("run-1", NewPlanScoredEvent("run-1", entities.ScoredPlan{})))

	assert.Equal(t, []string{"run-1"}, seen)

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent("run-2", NewShortageIdentifiedEvent("run-2", shortage)))
	assert.Len(t, seen, 1)
}
