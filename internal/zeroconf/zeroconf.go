// Package zeroconf registers the deskstate API as an mDNS/DNS-SD service so
// menu clients on the LAN can discover it without configuration.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"
)

const serviceType = "_deskstate._tcp"

// Service manages mDNS service registration.
type Service struct {
	name   string // instance name / hostname
	port   int
	server *zeroconf.Server
}

// New creates a zeroconf Service that will advertise on the given port.
// name should be the hostname.
func New(name string, port int) *Service {
	return &Service{
		name: name,
		port: port,
	}
}

// Start registers the mDNS service and blocks until ctx is cancelled, at
// which point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	txt := []string{"api=/api/snapshot", "events=/api/subscribe"}

	server, err := zeroconf.Register(
		s.name,      // instance name
		serviceType, // service type
		"local.",    // domain
		s.port,      // port
		txt,         // TXT records
		nil,         // ifaces — nil means all interfaces
	)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	s.server = server
	slog.Info("zeroconf: registered mDNS service", "name", s.name, "port", s.port)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}
