package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

const (
	serverBinaryName   = "ytfetch-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// localServer describes the backend the CLI is allowed to launch: one whose
// URL points at this machine.
type localServer struct {
	baseURL    string
	port       int
	configFile string
	configPort int

	http   *http.Client
	logger *zap.Logger
	out    io.Writer

	// overridable in tests
	findBinary func() (string, error)
	start      func(cmd *exec.Cmd) error
}

// newLocalServer returns nil when backendURL is not a loopback address: a
// remote backend is never started by the CLI.
func newLocalServer(backendURL string, cfg *domain.Config, cfgFile string, logger *zap.Logger, out io.Writer) (*localServer, error) {
	port, ok, err := loopbackPort(backendURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &localServer{
		baseURL:    backendURL,
		port:       port,
		configFile: cfgFile,
		configPort: cfg.Server.Port,
		http:       &http.Client{Timeout: time.Second},
		logger:     logger,
		out:        out,
		findBinary: findServerBinary,
		start:      startDetached,
	}, nil
}

// loopbackPort reports the port of backendURL when its host is local.
func loopbackPort(backendURL string) (int, bool, error) {
	u, err := url.Parse(backendURL)
	if err != nil || u.Host == "" {
		return 0, false, fmt.Errorf("invalid backend URL %q", backendURL)
	}

	host := u.Hostname()
	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !(ip.IsLoopback() || ip.IsUnspecified()) {
			return 0, false, nil
		}
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0, false, fmt.Errorf("invalid backend port %q", p)
		}
		return port, true, nil
	}
	if u.Scheme == "https" {
		return 443, true, nil
	}
	return 80, true, nil
}

// healthy asks the backend for /health and checks it reports ok
func (s *localServer) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "ok"
}

// command builds the server invocation. The listening port follows the
// backend URL, overriding the config file when they disagree.
func (s *localServer) command(binary string) *exec.Cmd {
	var args []string
	if s.configFile != "" {
		args = append(args, "-config", s.configFile)
	}
	cmd := exec.Command(binary, args...)
	cmd.Env = os.Environ()
	if s.port != s.configPort {
		cmd.Env = append(cmd.Env, fmt.Sprintf("YTFETCH_SERVER_PORT=%d", s.port))
	}
	return cmd
}

// ensure starts the server unless it already answers, then waits for it
func (s *localServer) ensure(ctx context.Context) error {
	if s.healthy(ctx) {
		return nil
	}

	binary, err := s.findBinary()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Server not running, starting on port %d...\n", s.port)
	cmd := s.command(binary)
	s.logger.Debug("Starting server",
		zap.String("binary", binary),
		zap.Strings("args", cmd.Args[1:]),
		zap.Int("port", s.port))

	if err := s.start(cmd); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, serverStartTimeout)
	defer cancel()
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()

	for {
		if s.healthy(ctx) {
			fmt.Fprintln(s.out, "Server started successfully")
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not start within %v", serverStartTimeout)
		case <-ticker.C:
		}
	}
}

// findServerBinary looks next to the CLI executable first, then on PATH
func findServerBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), serverBinaryName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(serverBinaryName); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%s binary not found next to ytfetch or in PATH", serverBinaryName)
}

// startDetached launches the server without tying it to this terminal.
// The server daemonizes itself, so the child is reaped in the background.
func startDetached(cmd *exec.Cmd) error {
	detachProcess(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
