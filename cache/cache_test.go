package cache

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), ".hydor", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyIsStable(t *testing.T) {
	a := Key("let x: int = 1;")
	b := Key("let x: int = 1;")
	if a != b {
		t.Errorf("same source hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
	if a == Key("let x: int = 2;") {
		t.Error("different sources produced the same key")
	}
}

func TestPutGet(t *testing.T) {
	c := openTemp(t)

	key := Key("1 + 2;")
	hydc := []byte("bytecode")
	hydd := []byte("debug")

	if err := c.Put(key, 1, hydc, hydd); err != nil {
		t.Fatalf("Put: %v", err)
	}

	gotC, gotD, ok, err := c.Get(key, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(gotC, hydc) || !bytes.Equal(gotD, hydd) {
		t.Errorf("got %q/%q, want %q/%q", gotC, gotD, hydc, hydd)
	}
}

func TestGetMiss(t *testing.T) {
	c := openTemp(t)

	_, _, ok, err := c.Get(Key("nothing"), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected a miss")
	}
}

func TestVersionMismatchIsMiss(t *testing.T) {
	c := openTemp(t)

	key := Key("x;")
	if err := c.Put(key, 1, []byte("v1"), nil); err != nil {
		t.Fatal(err)
	}

	_, _, ok, err := c.Get(key, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("entry from another format version must not hit")
	}
}

func TestPutReplaces(t *testing.T) {
	c := openTemp(t)

	key := Key("y;")
	if err := c.Put(key, 1, []byte("old"), nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(key, 1, []byte("new"), nil); err != nil {
		t.Fatal(err)
	}

	got, _, ok, err := c.Get(key, 1)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want new", got)
	}
}

func TestNilDebugSidecar(t *testing.T) {
	c := openTemp(t)

	key := Key("z;")
	if err := c.Put(key, 1, []byte("bc"), nil); err != nil {
		t.Fatal(err)
	}
	_, debug, ok, err := c.Get(key, 1)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if debug != nil {
		t.Errorf("debug = %q, want nil", debug)
	}
}

func TestPrune(t *testing.T) {
	c := openTemp(t)

	if err := c.Put(Key("a;"), 1, []byte("a"), nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(Key("b;"), 2, []byte("b"), nil); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Prune(2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, _, ok, _ := c.Get(Key("b;"), 2); !ok {
		t.Error("surviving entry lost")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Close()
}
