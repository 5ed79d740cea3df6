package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_ExchangeUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	deadAddr := ln.Addr().String()
	ln.Close()

	cfgPath := filepath.Join(t.TempDir(), "agent.yaml")
	cfg := fmt.Sprintf(`agent:
  id: "1"
exchange:
  addr: %s
  dial_timeout: 1s
peer:
  listen: 127.0.0.1:0
  peer_addr: 127.0.0.1:9
log:
  level: error
`, deadAddr)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	finished := make(chan error, 1)
	go func() { finished <- run([]string{"--config", cfgPath}) }()

	select {
	case err := <-finished:
		if err == nil {
			t.Fatal("run() succeeded without an exchange")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() still blocked after the exchange dial failed")
	}
}

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version", args: []string{"--version"}},
		{name: "help", args: []string{"-h"}},
		{name: "unknown flag", args: []string{"--nope"}, wantErr: true},
		{name: "missing config", args: []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("run(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}
