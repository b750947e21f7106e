package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tictoc/tictoc/pkg/config"
	"github.com/tictoc/tictoc/pkg/server"
	"github.com/tictoc/tictoc/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerConfig holds configuration for a test tictoc server instance
type ServerConfig struct {
	TokenSecret     string
	TokenTTLSeconds int
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{TokenSecret: "integration-secret"}
}

func (c ServerConfig) config() *config.Config {
	cfg := config.Default()
	cfg.TokenSecret = c.TokenSecret
	cfg.TokenTTLSeconds = c.TokenTTLSeconds
	cfg.BcryptCost = 4
	return cfg
}

// ServerInstance represents a running tictoc server for a single scenario
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	cancel        context.CancelFunc
	serverProcess *exec.Cmd
	configDir     string
}

// StartServer starts a tictoc server against the test database, in-process
// or as a tictocctl child process depending on how the suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, tc.DatabaseURL, cfg)
}

func startInlineServerInstance(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	s := server.NewServer(tc.DB, cfg.config(), "127.0.0.1", strconv.Itoa(port))
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", port, err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		Config:    cfg,
	}

	go func() {
		_ = s.Serve(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

func startBinaryServerInstance(binaryPath, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := strconv.Itoa(port)

	configDir, err := os.MkdirTemp("", "tictoc-config")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Migrations were already applied by the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"TICTOC_CONFIG_PATH="+configDir,
		"TICTOC_TOKEN_SECRET="+cfg.TokenSecret,
		"TICTOC_TOKEN_TTL="+strconv.Itoa(cfg.TokenTTLSeconds),
		"TICTOC_BCRYPT_COST=4",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		_ = os.RemoveAll(configDir)
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
		configDir:     configDir,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = si.Server.Shutdown(ctx)
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
	if si.configDir != "" {
		_ = os.RemoveAll(si.configDir)
	}
}
