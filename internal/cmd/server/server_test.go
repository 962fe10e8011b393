package server

import (
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("server", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "localhost:8080" || cfg.MaxRuns != 1000 || cfg.Catalog.Dir != "data/catalog" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("STAGESIM_ADDR", ":9000")
	cfg, err := ParseConfig(flag.NewFlagSet("server", flag.ContinueOnError), []string{"-max-runs", "5"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.MaxRuns != 5 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	go func() { done <- serve(ctx, lis, handler, log.New(io.Discard, "", 0)) }()

	resp, err := http.Get("http://" + lis.Addr().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestRunFailsWithoutCatalog(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:0"}
	cfg.Catalog.Dir = t.TempDir() + "/missing"
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error")
	}
}
