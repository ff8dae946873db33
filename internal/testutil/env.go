// Package testutil holds helpers for server lifecycle tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

// ServerConfig returns configuration values for creating a test server.
// This avoids importing the server package directly.
type ServerConfig struct {
	Host   string
	Port   string
	Logger *slog.Logger
}

// NewServerConfig creates configuration for a test server with a unique port.
func NewServerConfig(t *testing.T) ServerConfig {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	httpPort, err := FindFreePort()
	if err != nil {
		t.Fatalf("failed to find free port for HTTP: %v", err)
	}

	return ServerConfig{
		Host:   "127.0.0.1",
		Port:   httpPort,
		Logger: logger,
	}
}

// URL returns the server URL for the given config.
func (c ServerConfig) URL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}

// WaitForServer polls the /health endpoint until the server responds.
func WaitForServer(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/health")
		if err == nil {
			var health struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&health); err == nil && health.Status == "ok" {
				resp.Body.Close()
				return nil
			}
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

// WaitForShutdown waits for a channel to receive a value or timeout.
func WaitForShutdown(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown")
	}
}

// FindFreePort finds an available TCP port and returns it as a string.
func FindFreePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port), nil
}

// StartServer manages server lifecycle in tests.
type StartServer struct {
	Cancel context.CancelFunc
	Done   <-chan error
}

// Stop cancels the server context and waits for shutdown.
func (s *StartServer) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
	if s.Done != nil {
		<-s.Done
	}
}
