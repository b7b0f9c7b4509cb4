package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/chatshield/internal/logging"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakePinger struct {
	failing atomic.Bool
}

func (p *fakePinger) PingContext(context.Context) error {
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func startServer(t *testing.T, db Pinger, interval time.Duration) (healthpb.HealthClient, context.CancelFunc, <-chan error) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := NewGRPCServer(lis.Addr().String(), nopLogger{}, db)
	s.probeInterval = interval

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn), cancel, done
}

func checkStatus(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealth_ServingWhileDatabaseAnswers(t *testing.T) {
	client, cancel, done := startServer(t, &fakePinger{}, time.Hour)
	defer func() { cancel(); <-done }()

	if got := checkStatus(t, client, ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("chat status = %v, want SERVING", got)
	}
	if got := checkStatus(t, client, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall status = %v, want SERVING", got)
	}
}

func TestHealth_ProbeFlipsToNotServing(t *testing.T) {
	db := &fakePinger{}
	client, cancel, done := startServer(t, db, 20*time.Millisecond)
	defer func() { cancel(); <-done }()

	db.failing.Store(true)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if checkStatus(t, client, ServiceName) == healthpb.HealthCheckResponse_NOT_SERVING {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("status never became NOT_SERVING")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakePinger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakePinger{})
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}

// captureLogger records the level of each call.
type captureLogger struct {
	nopLogger
	mu     sync.Mutex
	levels []string
}

func (c *captureLogger) Debug(context.Context, string, ...any) { c.add("debug") }
func (c *captureLogger) Warn(context.Context, string, ...any)  { c.add("warn") }
func (c *captureLogger) With(...any) logging.Logger            { return c }

func (c *captureLogger) add(l string) {
	c.mu.Lock()
	c.levels = append(c.levels, l)
	c.mu.Unlock()
}
