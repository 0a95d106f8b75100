package tinyjs

import (
	"errors"
	"testing"
)

func TestHistory(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())
	mustEval(t, r, `var x = 1; persist("x"); persist("x"); x = "two"; persist("x");`)

	versions, err := r.History("x", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d: %v", len(versions), versions)
	}
	if versions[0].Value != `"two"` || versions[1].Value != "1" {
		t.Errorf("unexpected history %v", versions)
	}
	if versions[0].Version <= versions[1].Version {
		t.Errorf("expected newest first, got %v", versions)
	}

	versions, err = r.History("x", 1)
	if err != nil {
		t.Fatalf("History with limit: %v", err)
	}
	if len(versions) != 1 || versions[0].Value != `"two"` {
		t.Errorf("unexpected limited history %v", versions)
	}

	versions, err = r.History("missing", 0)
	if err != nil || len(versions) != 0 {
		t.Errorf("expected no versions, got %v, %v", versions, err)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	r := newRuntime(t)
	if _, err := r.History("x", 0); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}
