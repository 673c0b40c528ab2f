package obs

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealth serves grpc.health.v1.Health and flips the overall status with
// the readiness probe on every tick.
type GRPCHealth struct {
	Addr     string
	Ready    func(ctx context.Context) error
	Interval time.Duration
	Logger   *slog.Logger

	server *grpc.Server
	health *health.Server
}

func NewGRPCHealth(addr string, ready func(ctx context.Context) error, logger *slog.Logger) *GRPCHealth {
	h := &GRPCHealth{
		Addr:   addr,
		Ready:  ready,
		Logger: logger,
		server: grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	return h
}

// Run blocks until ctx is done or the listener fails.
func (h *GRPCHealth) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", h.Addr)
	if err != nil {
		return err
	}
	h.refresh(ctx)
	go h.watch(ctx)
	go func() {
		<-ctx.Done()
		h.health.Shutdown()
		h.server.GracefulStop()
	}()
	if h.Logger != nil {
		h.Logger.Info("grpc health listening", "addr", h.Addr)
	}
	return h.server.Serve(lis)
}

func (h *GRPCHealth) watch(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.refresh(ctx)
		}
	}
}

func (h *GRPCHealth) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if h.Ready != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.Ready(probeCtx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
}
