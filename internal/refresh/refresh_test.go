package refresh_test

import (
	"context"
	"testing"

	"deskstate/internal/cache"
	"deskstate/internal/events"
	"deskstate/internal/mapping"
	"deskstate/internal/models"
	"deskstate/internal/providers"
	"deskstate/internal/refresh"
)

type memStore struct {
	table models.MappingTable
}

func (s *memStore) Load() models.MappingTable {
	if s.table == nil {
		return models.MappingTable{}
	}
	return s.table.Clone()
}

func (s *memStore) Set(fp models.Fingerprint, idx int) models.MappingTable {
	if s.table == nil {
		s.table = models.MappingTable{}
	}
	s.table[fp] = idx
	return s.table.Clone()
}

func (s *memStore) Path() string { return "(memory)" }

func newOrchestrator(t *testing.T, mock *providers.Mock, store mapping.Store) (*refresh.Orchestrator, *cache.StateCache, *events.Bus) {
	t.Helper()
	c := cache.New()
	bus := events.NewBus()
	return refresh.New(mock, mock, mock, store, c, bus), c, bus
}

func TestCollect_ScaleKeysMatchEffectiveIndices(t *testing.T) {
	mock := providers.NewMock()
	store := &memStore{}
	o, _, _ := newOrchestrator(t, mock, store)

	snap := o.Collect(context.Background())

	want := make(map[int]bool)
	for _, m := range snap.Monitors {
		want[snap.Mapping.EffectiveIndex(m)] = true
	}
	for idx := range snap.Scale {
		if !want[idx] {
			t.Errorf("scale key %d is not an effective index", idx)
		}
	}
	if len(snap.Scale) == 0 {
		t.Error("expected scale readings for mock monitors")
	}
}

func TestCollect_MappedMonitorQueriedAtMappedIndex(t *testing.T) {
	mock := providers.NewMock()
	fpA := models.NewFingerprint("DEL", "A0C4", "5H2T1", "Mock Monitor A")
	store := &memStore{table: models.MappingTable{fpA: 7}}
	mock.SetScaleValue(7, "175")

	o, _, _ := newOrchestrator(t, mock, store)
	snap := o.Collect(context.Background())

	if snap.Scale[7] != "175" {
		t.Errorf("scale[7] = %q, want 175 (mapped index)", snap.Scale[7])
	}
	if _, ok := snap.Scale[1]; ok {
		t.Error("old ephemeral index 1 still present in scale readings")
	}
}

func TestCollect_AudioFailure_DegradesOnlyAudio(t *testing.T) {
	mock := providers.NewMock()
	mock.SetFailAudio(true)
	o, _, _ := newOrchestrator(t, mock, &memStore{})

	snap := o.Collect(context.Background())

	if len(snap.Outputs) != 0 || len(snap.Inputs) != 0 {
		t.Error("audio fields should be empty when the audio provider fails")
	}
	if len(snap.Monitors) == 0 {
		t.Error("monitor enumeration should survive an audio failure")
	}
	if len(snap.Scale) == 0 {
		t.Error("scale readings should survive an audio failure")
	}
}

func TestCollect_ScaleFailure_OmitsReadings(t *testing.T) {
	mock := providers.NewMock()
	mock.SetFailScale(true)
	o, _, _ := newOrchestrator(t, mock, &memStore{})

	snap := o.Collect(context.Background())
	if len(snap.Scale) != 0 {
		t.Errorf("scale = %v, want empty when reads fail", snap.Scale)
	}
	if len(snap.Monitors) == 0 {
		t.Error("monitors should still be populated")
	}
}

func TestRun_PublishesToCacheAndBus(t *testing.T) {
	mock := providers.NewMock()
	o, c, bus := newOrchestrator(t, mock, &memStore{})

	ch := bus.Subscribe("test")
	defer bus.Unsubscribe("test")

	o.Run(context.Background())

	got := c.Read()
	if got.Seq == 0 {
		t.Fatal("cache still holds the empty snapshot after Run")
	}
	select {
	case published := <-ch:
		if published.Seq != got.Seq {
			t.Errorf("published seq %d != cached seq %d", published.Seq, got.Seq)
		}
	default:
		t.Error("Run did not publish to the event bus")
	}
}

func TestRun_SequencesIncrease(t *testing.T) {
	mock := providers.NewMock()
	o, c, _ := newOrchestrator(t, mock, &memStore{})

	o.Run(context.Background())
	first := c.Read().Seq
	o.Run(context.Background())
	second := c.Read().Seq

	if second <= first {
		t.Errorf("sequence did not increase: %d then %d", first, second)
	}
}
