package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"deskstate/internal/models"
)

// Endpoint IDs carry the device direction so mutation calls can be routed
// without a second enumeration: "sink/<name>" or "source/<name>".
const (
	sinkIDPrefix   = "sink/"
	sourceIDPrefix = "source/"
)

// pactl invocations are cheap individually but a refresh fires several in a
// row; cap the rate so a burst of refreshes cannot hammer the sound server.
const pactlOpsPerSec = 10

// PactlAudio queries and mutates PulseAudio/PipeWire state through the
// pactl command-line tool.
//
// PulseAudio only has one default sink and one default source, so the
// communications slots have no server-side counterpart. They are tracked
// here for the lifetime of the process: assigning a communications role
// records it locally, and Defaults reports the recorded value (falling back
// to the console default when nothing was recorded).
type PactlAudio struct {
	binary  string
	limiter *rate.Limiter

	mu        sync.Mutex
	commsPlay string
	commsRec  string
}

// NewPactlAudio creates an adapter invoking the given pactl binary.
func NewPactlAudio(binary string) *PactlAudio {
	if binary == "" {
		binary = "pactl"
	}
	return &PactlAudio{
		binary:  binary,
		limiter: rate.NewLimiter(rate.Limit(pactlOpsPerSec), 5),
	}
}

// pactlDevice is the subset of `pactl -f json list sinks|sources` output the
// adapter consumes. Anything that does not decode into this shape is treated
// as a failed query.
type pactlDevice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Monitor     bool   `json:"monitor,omitempty"`
}

func (p *PactlAudio) Outputs(ctx context.Context) ([]models.AudioEndpoint, error) {
	return p.listDevices(ctx, "sinks", sinkIDPrefix)
}

func (p *PactlAudio) Inputs(ctx context.Context) ([]models.AudioEndpoint, error) {
	devices, err := p.listDevices(ctx, "sources", sourceIDPrefix)
	if err != nil {
		return nil, err
	}
	// Sink monitors show up as sources; they are not real recording devices.
	filtered := devices[:0]
	for _, d := range devices {
		if strings.HasSuffix(d.ID, ".monitor") {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered, nil
}

func (p *PactlAudio) listDevices(ctx context.Context, kind, idPrefix string) ([]models.AudioEndpoint, error) {
	out, err := p.run(ctx, "--format=json", "list", kind)
	if err != nil {
		return nil, err
	}

	var devices []pactlDevice
	if err := json.Unmarshal(out, &devices); err != nil {
		return nil, fmt.Errorf("pactl: unexpected %s payload: %w", kind, err)
	}

	endpoints := make([]models.AudioEndpoint, 0, len(devices))
	for _, d := range devices {
		if d.Name == "" {
			continue
		}
		name := d.Description
		if name == "" {
			name = d.Name
		}
		endpoints = append(endpoints, models.AudioEndpoint{
			Name: name,
			ID:   idPrefix + d.Name,
		})
	}
	return endpoints, nil
}

// Defaults performs the four role lookups. Each is individually best-effort:
// a failed lookup leaves its slot empty rather than failing the whole call.
func (p *PactlAudio) Defaults(ctx context.Context) (models.DefaultAssignments, error) {
	var d models.DefaultAssignments

	if out, err := p.run(ctx, "get-default-sink"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			d.ConsolePlayback = sinkIDPrefix + name
		}
	} else {
		slog.Debug("pactl: get-default-sink failed", "err", err)
	}
	if out, err := p.run(ctx, "get-default-source"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			d.ConsoleRecording = sourceIDPrefix + name
		}
	} else {
		slog.Debug("pactl: get-default-source failed", "err", err)
	}

	p.mu.Lock()
	d.CommunicationsPlayback = p.commsPlay
	d.CommunicationsRecording = p.commsRec
	p.mu.Unlock()
	if d.CommunicationsPlayback == "" {
		d.CommunicationsPlayback = d.ConsolePlayback
	}
	if d.CommunicationsRecording == "" {
		d.CommunicationsRecording = d.ConsoleRecording
	}

	return d, nil
}

func (p *PactlAudio) SetDefault(ctx context.Context, id string, role models.Role) error {
	name, playback, ok := splitEndpointID(id)
	if !ok {
		return fmt.Errorf("pactl: malformed endpoint id %q", id)
	}

	if role == models.RoleConsole || role == models.RoleBoth {
		verb := "set-default-source"
		if playback {
			verb = "set-default-sink"
		}
		if _, err := p.run(ctx, verb, name); err != nil {
			return fmt.Errorf("pactl: %s %s: %w", verb, name, err)
		}
	}
	if role == models.RoleCommunications || role == models.RoleBoth {
		p.mu.Lock()
		if playback {
			p.commsPlay = id
		} else {
			p.commsRec = id
		}
		p.mu.Unlock()
	}
	return nil
}

func (p *PactlAudio) run(ctx context.Context, args ...string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := exec.CommandContext(ctx, p.binary, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// splitEndpointID decodes the direction-carrying endpoint ID scheme.
func splitEndpointID(id string) (name string, playback, ok bool) {
	switch {
	case strings.HasPrefix(id, sinkIDPrefix):
		return strings.TrimPrefix(id, sinkIDPrefix), true, true
	case strings.HasPrefix(id, sourceIDPrefix):
		return strings.TrimPrefix(id, sourceIDPrefix), false, true
	default:
		return "", false, false
	}
}

func isPlaybackID(id string) bool {
	return strings.HasPrefix(id, sinkIDPrefix)
}
