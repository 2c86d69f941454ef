// Package models defines the data structures for the deskstate system.
// A Snapshot is immutable once constructed; all consumers receive deep copies.
package models

import "time"

// Role identifies one of the audio default-device slots. Playback and
// recording each carry an independent console and communications default.
type Role string

const (
	RoleConsole        Role = "console"
	RoleCommunications Role = "communications"
	// RoleBoth addresses console and communications in one action.
	RoleBoth Role = "both"
)

// AudioEndpoint is one playback or recording device as reported by the
// audio provider.
type AudioEndpoint struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// DefaultAssignments tracks the four default-device slots. An empty string
// means the provider could not report that slot.
type DefaultAssignments struct {
	ConsolePlayback         string `json:"console_playback,omitempty"`
	CommunicationsPlayback  string `json:"communications_playback,omitempty"`
	ConsoleRecording        string `json:"console_recording,omitempty"`
	CommunicationsRecording string `json:"communications_recording,omitempty"`
}

// MonitorInfo describes one physical monitor from the current enumeration
// pass. Index is only valid for this pass and must never be persisted as an
// identity; Fingerprint is the durable key.
type MonitorInfo struct {
	Index       int         `json:"index"`
	Name        string      `json:"name"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// MappingTable maps a monitor fingerprint to the target index the external
// scale tool uses to address it.
type MappingTable map[Fingerprint]int

// EffectiveIndex resolves the target index for a monitor: the mapped index
// when an entry exists, the ephemeral enumeration index otherwise.
func (t MappingTable) EffectiveIndex(m MonitorInfo) int {
	if idx, ok := t[m.Fingerprint]; ok {
		return idx
	}
	return m.Index
}

// Clone returns an independent copy of the table.
func (t MappingTable) Clone() MappingTable {
	out := make(MappingTable, len(t))
	for fp, idx := range t {
		out[fp] = idx
	}
	return out
}

// ScaleReading holds observed scale values keyed by effective target index.
// A missing key means the value could not be read and should render as unknown.
type ScaleReading map[int]string

// Snapshot is the aggregate of all cached hardware facts at one point in
// time. Seq increases monotonically with each collection pass; a snapshot
// with a lower Seq is older regardless of when it was published.
type Snapshot struct {
	Outputs  []AudioEndpoint    `json:"outputs"`
	Inputs   []AudioEndpoint    `json:"inputs"`
	Defaults DefaultAssignments `json:"defaults"`
	Monitors []MonitorInfo      `json:"monitors"`
	Mapping  MappingTable       `json:"mapping"`
	Scale    ScaleReading       `json:"scale"`
	Seq      uint64             `json:"seq"`
	Taken    time.Time          `json:"taken"`
}

// EmptySnapshot returns the well-defined zero snapshot served before the
// first successful collection.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Outputs:  []AudioEndpoint{},
		Inputs:   []AudioEndpoint{},
		Monitors: []MonitorInfo{},
		Mapping:  MappingTable{},
		Scale:    ScaleReading{},
	}
}

// DeepCopy returns a deep copy of the snapshot.
func (s Snapshot) DeepCopy() Snapshot {
	next := Snapshot{
		Defaults: s.Defaults,
		Seq:      s.Seq,
		Taken:    s.Taken,
	}

	next.Outputs = make([]AudioEndpoint, len(s.Outputs))
	copy(next.Outputs, s.Outputs)

	next.Inputs = make([]AudioEndpoint, len(s.Inputs))
	copy(next.Inputs, s.Inputs)

	next.Monitors = make([]MonitorInfo, len(s.Monitors))
	copy(next.Monitors, s.Monitors)

	next.Mapping = s.Mapping.Clone()

	next.Scale = make(ScaleReading, len(s.Scale))
	for idx, v := range s.Scale {
		next.Scale[idx] = v
	}

	return next
}
