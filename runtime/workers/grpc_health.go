package workers

import (
	"context"
	"log/slog"
	"net"

	grpcsdk "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthWorker exposes the standard gRPC health service for orchestrators' probes.
// The server reports SERVING while running and NOT_SERVING once shutdown started.
type GRPCHealthWorker struct {
	log    *slog.Logger
	addr   string
	health *health.Server
	ready  chan net.Addr
}

func NewGRPCHealthWorker(log *slog.Logger, addr string) *GRPCHealthWorker {
	return &GRPCHealthWorker{
		log:    log,
		addr:   addr,
		health: health.NewServer(),
		ready:  make(chan net.Addr, 1),
	}
}

// Ready yields the bound address once the listener is open.
func (w *GRPCHealthWorker) Ready() <-chan net.Addr {
	return w.ready
}

func (w *GRPCHealthWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return err
	}
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcsdk.UnaryLoggingInterceptor(w.log)))
	grpc_health_v1.RegisterHealthServer(server, w.health)
	w.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	w.log.Info("gRPC health server listening", "addr", listener.Addr().String())
	select {
	case w.ready <- listener.Addr():
	default:
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		w.health.Shutdown()
		server.GracefulStop()
		w.log.Info("gRPC health server stopped")
		return nil
	}
}
