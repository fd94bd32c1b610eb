package daemon_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"chanvault/internal/daemon"
	"chanvault/internal/testsupport"
)

func TestNewBuildsAndCloses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Store() == nil {
		t.Fatal("store not exposed")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	// Hold the instance lock as a competing process would.
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "chanvault.lock"))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("external lock: %v, %v", ok, err)
	}
	defer lock.Unlock()

	err = d.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail while the lock is held")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("err = %v", err)
	}
}
