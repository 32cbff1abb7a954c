package health

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the grpc.health.v1 service name reported next to the
// overall ("") status.
const ServiceName = "lms.v1.LMS"

// GrpcChecker serves grpc.health.v1 and keeps its status in line with the
// database.
type GrpcChecker struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	logger   *slog.Logger
	serving  bool
}

func NewGrpcChecker(db Pinger, interval time.Duration, logger *slog.Logger) *GrpcChecker {
	return &GrpcChecker{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
		logger:   logger,
	}
}

// Register adds the health service to s.
func (c *GrpcChecker) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, c.server)
}

// Check pings the database once and publishes the result.
func (c *GrpcChecker) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	err := c.db.PingContext(pingCtx)
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	if serving := err == nil; serving != c.serving {
		if serving {
			c.logger.InfoContext(ctx, "database reachable, reporting SERVING")
		} else {
			c.logger.WarnContext(ctx, "database unreachable, reporting NOT_SERVING", "error", err)
		}
		c.serving = serving
	}

	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}

// Watch checks immediately and then on every interval until ctx is done.
func (c *GrpcChecker) Watch(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for every service and ignores later updates.
func (c *GrpcChecker) Shutdown() {
	c.server.Shutdown()
}
