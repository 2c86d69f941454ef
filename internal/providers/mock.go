package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deskstate/internal/models"
)

// Mock is a thread-safe in-memory provider set for testing and development
// (--mock). It simulates the latency of the real out-of-process adapters and
// can be told to fail individual subsystems.
type Mock struct {
	mu           sync.Mutex
	outputs      []models.AudioEndpoint
	inputs       []models.AudioEndpoint
	defaults     models.DefaultAssignments
	monitors     []models.MonitorInfo
	scale        map[int]string
	failAudio    bool
	failMonitors bool
	failScale    bool
	delay        time.Duration
}

// NewMock creates a mock provider set with one output, one input, and two
// monitors pre-populated.
func NewMock() *Mock {
	fpA := models.NewFingerprint("DEL", "A0C4", "5H2T1", "Mock Monitor A")
	fpB := models.NewFingerprint("GSM", "5B09", "77312", "Mock Monitor B")
	return &Mock{
		outputs: []models.AudioEndpoint{
			{Name: "Mock Speakers", ID: "sink/mock-speakers"},
			{Name: "Mock Headset", ID: "sink/mock-headset"},
		},
		inputs: []models.AudioEndpoint{
			{Name: "Mock Microphone", ID: "source/mock-mic"},
		},
		defaults: models.DefaultAssignments{
			ConsolePlayback:         "sink/mock-speakers",
			CommunicationsPlayback:  "sink/mock-headset",
			ConsoleRecording:        "source/mock-mic",
			CommunicationsRecording: "source/mock-mic",
		},
		monitors: []models.MonitorInfo{
			{Index: 1, Name: "Mock Monitor A", Fingerprint: fpA},
			{Index: 2, Name: "Mock Monitor B", Fingerprint: fpB},
		},
		scale: map[int]string{1: "100", 2: "150"},
		delay: time.Millisecond,
	}
}

// SetFailAudio configures all audio queries to fail.
func (m *Mock) SetFailAudio(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAudio = fail
}

// SetFailMonitors configures monitor enumeration to fail.
func (m *Mock) SetFailMonitors(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMonitors = fail
}

// SetFailScale configures all scale reads to fail.
func (m *Mock) SetFailScale(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failScale = fail
}

// SetMonitors replaces the simulated monitor list.
func (m *Mock) SetMonitors(monitors []models.MonitorInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitors = monitors
}

// SetScaleValue seeds the simulated scale table.
func (m *Mock) SetScaleValue(targetIndex int, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale[targetIndex] = value
}

func (m *Mock) Outputs(ctx context.Context) ([]models.AudioEndpoint, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAudio {
		return nil, fmt.Errorf("mock: audio failure configured")
	}
	out := make([]models.AudioEndpoint, len(m.outputs))
	copy(out, m.outputs)
	return out, nil
}

func (m *Mock) Inputs(ctx context.Context) ([]models.AudioEndpoint, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAudio {
		return nil, fmt.Errorf("mock: audio failure configured")
	}
	in := make([]models.AudioEndpoint, len(m.inputs))
	copy(in, m.inputs)
	return in, nil
}

func (m *Mock) Defaults(ctx context.Context) (models.DefaultAssignments, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAudio {
		return models.DefaultAssignments{}, fmt.Errorf("mock: audio failure configured")
	}
	return m.defaults, nil
}

func (m *Mock) SetDefault(ctx context.Context, id string, role models.Role) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAudio {
		return fmt.Errorf("mock: audio failure configured")
	}
	playback := isPlaybackID(id)
	if role == models.RoleConsole || role == models.RoleBoth {
		if playback {
			m.defaults.ConsolePlayback = id
		} else {
			m.defaults.ConsoleRecording = id
		}
	}
	if role == models.RoleCommunications || role == models.RoleBoth {
		if playback {
			m.defaults.CommunicationsPlayback = id
		} else {
			m.defaults.CommunicationsRecording = id
		}
	}
	return nil
}

func (m *Mock) Monitors(ctx context.Context) ([]models.MonitorInfo, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMonitors {
		return nil, fmt.Errorf("mock: monitor failure configured")
	}
	mons := make([]models.MonitorInfo, len(m.monitors))
	copy(mons, m.monitors)
	return mons, nil
}

func (m *Mock) Get(ctx context.Context, targetIndex int) (string, bool) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failScale {
		return "", false
	}
	v, ok := m.scale[targetIndex]
	return v, ok
}

func (m *Mock) Set(ctx context.Context, percent, targetIndex int) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failScale {
		return fmt.Errorf("mock: scale failure configured")
	}
	m.scale[targetIndex] = fmt.Sprintf("%d", percent)
	return nil
}

func (m *Mock) Available() bool { return true }
