package dispatch_test

import (
	"context"
	"testing"

	"deskstate/internal/cache"
	"deskstate/internal/dispatch"
	"deskstate/internal/events"
	"deskstate/internal/mapping"
	"deskstate/internal/models"
	"deskstate/internal/providers"
	"deskstate/internal/refresh"
)

var testLimits = dispatch.Limits{
	ScalePresets:   []int{100, 125, 150, 175, 200, 225, 250},
	MaxTargetIndex: 16,
}

type fixture struct {
	mock  *providers.Mock
	store *mapping.JSONStore
	cache *cache.StateCache
	disp  *dispatch.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := providers.NewMock()
	store := mapping.NewJSONStore(t.TempDir())
	c := cache.New()
	bus := events.NewBus()
	o := refresh.New(mock, mock, mock, store, c, bus)
	return &fixture{
		mock:  mock,
		store: store,
		cache: c,
		disp:  dispatch.New(mock, mock, store, c, o, testLimits),
	}
}

func TestSetDefaultEndpoint_MutatesAndRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.disp.SetDefaultEndpoint(ctx, "sink/mock-headset", models.RoleConsole)
	f.disp.Wait()

	snap := f.cache.Read()
	if snap.Seq == 0 {
		t.Fatal("no refresh followed the action")
	}
	if snap.Defaults.ConsolePlayback != "sink/mock-headset" {
		t.Errorf("ConsolePlayback = %q after action", snap.Defaults.ConsolePlayback)
	}
}

func TestSetDefaultEndpoint_EmptyID_NoOp(t *testing.T) {
	f := newFixture(t)

	f.disp.SetDefaultEndpoint(context.Background(), "", models.RoleBoth)
	f.disp.Wait()

	if f.cache.Read().Seq != 0 {
		t.Error("empty id dispatched an action")
	}
}

func TestSetDefaultEndpoint_FailedMutation_StillRefreshes(t *testing.T) {
	f := newFixture(t)
	f.mock.SetFailAudio(true)

	f.disp.SetDefaultEndpoint(context.Background(), "sink/mock-headset", models.RoleConsole)
	f.disp.Wait()

	if f.cache.Read().Seq == 0 {
		t.Error("refresh must follow a failed mutation")
	}
}

func TestSetScale_OutsidePresets_NoOp(t *testing.T) {
	f := newFixture(t)

	f.disp.SetScale(context.Background(), 137, 1)
	f.disp.Wait()

	if f.cache.Read().Seq != 0 {
		t.Error("out-of-preset percentage dispatched an action")
	}
}

func TestSetScale_AppliesAndObserves(t *testing.T) {
	f := newFixture(t)

	f.disp.SetScale(context.Background(), 175, 1)
	f.disp.Wait()

	snap := f.cache.Read()
	if snap.Scale[1] != "175" {
		t.Errorf("scale[1] = %q after set, want 175", snap.Scale[1])
	}
}

func TestSetMapping_EndToEnd_RekeysScale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fpA := models.NewFingerprint("DEL", "A0C4", "5H2T1", "Mock Monitor A")
	f.mock.SetScaleValue(3, "125")

	f.disp.SetMapping(ctx, fpA, 3)
	f.disp.Wait()

	snap := f.cache.Read()
	if snap.Mapping[fpA] != 3 {
		t.Errorf("mapping[%s] = %d, want 3", fpA, snap.Mapping[fpA])
	}
	if _, ok := snap.Scale[3]; !ok {
		t.Error("scale not keyed by the new target index 3")
	}
	if _, ok := snap.Scale[1]; ok {
		t.Error("scale still keyed by the old ephemeral index 1")
	}

	// Durable round-trip.
	if f.store.Load()[fpA] != 3 {
		t.Error("mapping not persisted")
	}
}

func TestSetMapping_IndexOutOfRange_NoOp(t *testing.T) {
	f := newFixture(t)
	fpA := models.NewFingerprint("DEL", "A0C4", "5H2T1", "Mock Monitor A")

	f.disp.SetMapping(context.Background(), fpA, 99)
	f.disp.SetMapping(context.Background(), fpA, 0)
	f.disp.Wait()

	if len(f.store.Load()) != 0 {
		t.Error("out-of-range index was persisted")
	}
}
