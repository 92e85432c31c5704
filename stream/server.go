package stream

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pthm-cable/flock/sim"
)

// Hello is the first message a client receives.
type Hello struct {
	Type      string  `json:"type"`
	Length    float64 `json:"length"`
	Boundary  string  `json:"boundary"`
	Prey      int     `json:"prey"`
	Predators int     `json:"predators"`
	Seed      int64   `json:"seed"`
}

// Options configures a Server.
type Options struct {
	Addr          string
	Rate          float64 // snapshots per second
	StepsPerFrame int
	Seed          int64
	// Rebuild creates a fresh simulation for the "restart" command. nil
	// disables restarts.
	Rebuild func() (*sim.Simulation, error)
}

// Server steps a simulation on its own goroutine and streams snapshots.
type Server struct {
	opts   Options
	sim    *sim.Simulation
	hub    *Hub
	paused bool
}

// NewServer creates a server for s. The server owns s from now on.
func NewServer(s *sim.Simulation, opts Options) *Server {
	if opts.Rate <= 0 {
		opts.Rate = 20
	}
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	return &Server{opts: opts, sim: s, hub: NewHub(helloFor(s, opts.Seed))}
}

func helloFor(s *sim.Simulation, seed int64) Hello {
	return Hello{
		Type:      "config",
		Length:    s.Length(),
		Boundary:  s.Boundary().String(),
		Prey:      s.PreyCount(),
		Predators: s.PredatorCount(),
		Seed:      seed,
	}
}

// Hub returns the server's client hub.
func (srv *Server) Hub() *Hub { return srv.hub }

// Handler returns the HTTP routes.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", srv.hub)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", srv.opts.Addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()
	slog.Info("stream server started", "addr", ln.Addr().String())

	srv.Loop(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv.hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Loop steps and broadcasts at the configured rate until ctx is cancelled
// or the run ends.
func (srv *Server) Loop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / srv.opts.Rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-srv.hub.Commands():
			srv.apply(cmd)
		case <-ticker.C:
			if srv.paused || srv.sim.Done() {
				continue
			}
			for i := 0; i < srv.opts.StepsPerFrame && !srv.sim.Done(); i++ {
				srv.sim.Step()
			}
			srv.hub.Broadcast(srv.sim.Snapshot(srv.opts.Seed, nil))
		}
	}
}

func (srv *Server) apply(cmd Command) {
	switch cmd.Type {
	case "pause":
		srv.paused = true
	case "resume":
		srv.paused = false
	case "swap_boundary":
		srv.sim.SetBoundary(srv.sim.Boundary().Swap())
		srv.hub.SetHello(helloFor(srv.sim, srv.opts.Seed))
		slog.Info("boundary swapped", "boundary", srv.sim.Boundary().String())
	case "restart":
		if srv.opts.Rebuild == nil {
			return
		}
		s, err := srv.opts.Rebuild()
		if err != nil {
			slog.Error("restart failed", "error", err)
			return
		}
		srv.sim = s
		srv.hub.SetHello(helloFor(s, srv.opts.Seed))
	default:
		slog.Warn("unknown command", "type", cmd.Type)
	}
}
