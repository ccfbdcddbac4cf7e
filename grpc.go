package wctx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// GRPCServiceRegistrar can register itself with a gRPC server.
type GRPCServiceRegistrar interface {
	RegisterGRPCService(server *grpc.Server)
}

// GRPCComponent runs an auxiliary gRPC endpoint next to the container's HTTP
// server. Services come from context components implementing
// GRPCServiceRegistrar; the endpoint starts when the context refreshes and
// stops when it closes.
type GRPCComponent struct {
	mu         sync.Mutex
	addr       string
	logger     Logger
	registrars []GRPCServiceRegistrar
	server     *grpc.Server
	listener   net.Listener
}

// NewGRPCComponent builds an endpoint listening on addr (":50051" when
// empty) serving the provided registrars.
func NewGRPCComponent(addr string, registrars ...GRPCServiceRegistrar) *GRPCComponent {
	return &GRPCComponent{
		addr:       NormalizePort(addr, ":50051"),
		logger:     NewNoopLogger(),
		registrars: registrars,
	}
}

// SetLogger replaces the component logger. Useful from an initializer once
// the context logger is known.
func (g *GRPCComponent) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	g.mu.Lock()
	g.logger = logger
	g.mu.Unlock()
}

// AddRegistrar appends a service registrar. It has no effect once started.
func (g *GRPCComponent) AddRegistrar(r GRPCServiceRegistrar) {
	if r == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server != nil {
		return
	}
	g.registrars = append(g.registrars, r)
}

// Start registers all services and begins serving in the background.
func (g *GRPCComponent) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.server != nil {
		return errors.New("grpc component already started")
	}

	server := grpc.NewServer()

	// Reflection makes the endpoint inspectable with grpcurl/grpcui.
	reflection.Register(server)

	for _, registrar := range g.registrars {
		if registrar == nil {
			return errors.New("nil grpc service registrar")
		}
		registrar.RegisterGRPCService(server)
	}

	listener, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", g.addr, err)
	}

	g.server = server
	g.listener = listener
	logger := g.logger

	go func() {
		logger.Info("starting grpc endpoint", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil {
			logger.Error("grpc serve failed", "error", err)
		}
	}()
	return nil
}

// Stop drains the endpoint gracefully, forcing termination when ctx expires
// first.
func (g *GRPCComponent) Stop(ctx context.Context) error {
	g.mu.Lock()
	server := g.server
	g.server = nil
	g.listener = nil
	g.mu.Unlock()

	if server == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		server.Stop()
		return ctx.Err()
	}
}

// Addr returns the bound listen address, empty when not started.
func (g *GRPCComponent) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// HealthChecks reports endpoint liveness.
func (g *GRPCComponent) HealthChecks() HealthChecks {
	return HealthChecks{
		Liveness: map[string]HealthCheck{
			"grpc": func(context.Context) error {
				g.mu.Lock()
				defer g.mu.Unlock()
				if g.server == nil {
					return errors.New("grpc endpoint not serving")
				}
				return nil
			},
		},
	}
}
