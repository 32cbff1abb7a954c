package health_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lms-service/internal/health"
	"lms-service/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

// fakeDB fails pings while down is set.
type fakeDB struct {
	down atomic.Bool
}

func (f *fakeDB) PingContext(ctx context.Context) error {
	if f.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestHealthHandler(t *testing.T) {
	db := &fakeDB{}
	router := chi.NewRouter()
	health.NewHandler(db, logger.NewDiscard()).RegisterRoutes(router)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("Health", func(t *testing.T) {
		rec := get("/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("Ready", func(t *testing.T) {
		rec := get("/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("Not ready without a database", func(t *testing.T) {
		db.down.Store(true)
		defer db.down.Store(false)

		rec := get("/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, http.StatusOK, get("/health").Code)
	})
}

func TestGrpcChecker(t *testing.T) {
	db := &fakeDB{}
	checker := health.NewGrpcChecker(db, time.Hour, logger.NewDiscard())

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	checker.Register(server)
	go func() { _ = server.Serve(lis) }()
	defer server.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	status := func(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.Status
	}

	t.Run("Serving while the database answers", func(t *testing.T) {
		checker.Check(context.Background())
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(""))
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(health.ServiceName))
	})

	t.Run("Not serving when the database is down", func(t *testing.T) {
		db.down.Store(true)
		checker.Check(context.Background())
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(""))

		db.down.Store(false)
		checker.Check(context.Background())
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(""))
	})

	t.Run("Watch stops with its context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			checker.Watch(ctx)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Watch did not return after cancel")
		}
	})

	t.Run("Shutdown reports not serving", func(t *testing.T) {
		checker.Shutdown()
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(""))
	})
}
