// Command healthcheck checks a running installtrack server and exits non-zero
// when it is unhealthy. It is meant for container HEALTHCHECK instructions,
// so it runs next to the server and reads the same configuration.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/installtrack/internal/config"
)

const checkTimeout = 2 * time.Second

func main() {
	if err := check(context.Background(), healthURL(listenAddr())); err != nil {
		fmt.Fprintln(os.Stderr, "unhealthy:", err)
		os.Exit(1)
	}
}

// listenAddr resolves the server address the way the server does: defaults,
// then the config file, then the environment. An invalid configuration falls
// back to the environment variable alone.
func listenAddr() string {
	if cfg, err := config.Load(); err == nil {
		return cfg.ListenAddr
	}
	return os.Getenv(config.EnvListenAddr)
}

func healthURL(addr string) string {
	return "http://" + normalizeAddr(addr) + "/api/v1/health"
}

// check requires a 200 response whose JSON body reports status "ok".
func check(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read health response: %w", err)
	}
	if status := gjson.GetBytes(body, "status").String(); status != "ok" {
		return fmt.Errorf("health status %q", status)
	}
	return nil
}

// normalizeAddr points the check at loopback when the server binds every
// interface, since the check runs inside the same container.
func normalizeAddr(raw string) string {
	fallback := config.Default().ListenAddr
	if raw == "" {
		return fallback
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return fallback
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
