package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"deskstate/internal/models"
)

const (
	displayConfigDest   = "org.gnome.Mutter.DisplayConfig"
	displayConfigPath   = "/org/gnome/Mutter/DisplayConfig"
	displayConfigMethod = "org.gnome.Mutter.DisplayConfig.GetCurrentState"
)

// DisplayConfig enumerates physical monitors via the session bus display
// configuration service. Fingerprints are derived from the EDID identity
// fields the compositor exposes (vendor, product, serial).
//
// The bus connection is established lazily so the daemon can start before
// the session bus is reachable; until it is, enumeration fails per-pass and
// the snapshot simply carries no monitors.
type DisplayConfig struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// NewDisplayConfig creates the adapter. No connection is made yet.
func NewDisplayConfig() *DisplayConfig {
	return &DisplayConfig{}
}

func (d *DisplayConfig) bus() (*dbus.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		return d.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("displayconfig: session bus: %w", err)
	}
	d.conn = conn
	return conn, nil
}

// Close releases the bus connection if one was established.
func (d *DisplayConfig) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// dcMonitorSpec mirrors the (ssss) monitor identifier:
// connector, vendor, product, serial.
type dcMonitorSpec struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

// dcMode mirrors one entry of the a(siiddada{sv}) modes array.
type dcMode struct {
	ID             string
	Width          int32
	Height         int32
	RefreshRate    float64
	PreferredScale float64
	Scales         []float64
	Properties     map[string]dbus.Variant
}

// dcMonitor mirrors one entry of the monitors array in GetCurrentState.
type dcMonitor struct {
	Spec       dcMonitorSpec
	Modes      []dcMode
	Properties map[string]dbus.Variant
}

// dcLogicalMonitor mirrors one entry of the logical_monitors array.
type dcLogicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []dcMonitorSpec
	Properties map[string]dbus.Variant
}

// Monitors queries GetCurrentState and converts the physical monitor list.
// Enumeration order follows the compositor; indices are 1-based to match the
// external scale tool's addressing and are only valid for this pass.
func (d *DisplayConfig) Monitors(ctx context.Context) ([]models.MonitorInfo, error) {
	conn, err := d.bus()
	if err != nil {
		return nil, err
	}
	obj := conn.Object(displayConfigDest, displayConfigPath)
	call := obj.CallWithContext(ctx, displayConfigMethod, 0)
	if call.Err != nil {
		return nil, fmt.Errorf("displayconfig: GetCurrentState: %w", call.Err)
	}

	var (
		serial   uint32
		monitors []dcMonitor
		logical  []dcLogicalMonitor
		props    map[string]dbus.Variant
	)
	if err := call.Store(&serial, &monitors, &logical, &props); err != nil {
		return nil, fmt.Errorf("displayconfig: unexpected reply shape: %w", err)
	}

	infos := make([]models.MonitorInfo, 0, len(monitors))
	for i, m := range monitors {
		name := displayName(m)
		infos = append(infos, models.MonitorInfo{
			Index: i + 1,
			Name:  name,
			Fingerprint: models.NewFingerprint(
				edidField(m.Spec.Vendor),
				edidField(m.Spec.Product),
				edidField(m.Spec.Serial),
				name,
			),
		})
	}
	return infos, nil
}

// edidField normalizes the compositor's "unknown" placeholder to an absent
// field so identity-less monitors get the degraded fingerprint.
func edidField(s string) string {
	if s == "unknown" {
		return ""
	}
	return s
}

// displayName prefers the compositor's human-readable name, falling back to
// the connector.
func displayName(m dcMonitor) string {
	if v, ok := m.Properties["display-name"]; ok {
		if s, ok := v.Value().(string); ok && s != "" {
			return s
		}
	}
	return m.Spec.Connector
}
