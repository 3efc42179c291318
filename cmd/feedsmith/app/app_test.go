package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewAppDefaults(t *testing.T) {
	a, err := New("1.2.3", "abc", "today")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if a.Version() != "1.2.3" {
		t.Errorf("Version() = %q, expected %q", a.Version(), "1.2.3")
	}
	if a.Config().StoreBackend == "" {
		t.Error("expected a default store backend")
	}
	if a.Config().ListenAddr == "" {
		t.Error("expected a default listen address")
	}
	if a.Logger() == nil {
		t.Error("expected a logger")
	}
}

func TestFeedsmithSingleton(t *testing.T) {
	a, err := New("dev", "", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.config.StoreBackend = StoreMemory

	ctx := context.Background()
	first, err := a.Feedsmith(ctx)
	if err != nil {
		t.Fatalf("Feedsmith() error = %v", err)
	}
	second, err := a.Feedsmith(ctx)
	if err != nil {
		t.Fatalf("Feedsmith() error = %v", err)
	}
	if first != second {
		t.Error("expected the same feedsmith instance across calls")
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	a, err := New("dev", "", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.config.StoreBackend = "etcd"

	if _, _, err := a.openStore(context.Background()); err == nil {
		t.Error("expected an error for an unknown store backend")
	}
}

func TestVersionCommand(t *testing.T) {
	a, err := New("9.9.9", "", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out bytes.Buffer
	cmd := a.CreateVersionCommand()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "feedsmith 9.9.9") {
		t.Errorf("version output = %q, expected it to contain %q", out.String(), "feedsmith 9.9.9")
	}
}
