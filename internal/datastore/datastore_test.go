package datastore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type race struct {
	Name  string `json:"name"`
	Round int    `json:"round"`
}

func writeFile(t *testing.T, root, name, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name)+".json")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestValidName(t *testing.T) {
	valid := []string{"next-race", "drivers/driver_16", "archive/2024", "driver-standings-2025", "a.b"}
	for _, n := range valid {
		if !ValidName(n) {
			t.Errorf("expected %q to be valid", n)
		}
	}
	invalid := []string{"", "..", "../etc/passwd", "drivers/../secret", "/abs", "a//b", ".hidden", "a b", "races/"}
	for _, n := range invalid {
		if ValidName(n) {
			t.Errorf("expected %q to be invalid", n)
		}
	}
}

func TestReadErrors(t *testing.T) {
	root := t.TempDir()
	g := New(root)

	if _, err := g.Read("next-race"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := g.Read("../x"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	writeFile(t, root, "broken", `{"name": `)
	if _, err := g.Read("broken"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(root, "dir.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Read("dir"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a directory, got %v", err)
	}
}

func TestReadStale(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "next-race", `{"name":"Monza"}`)
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(p, old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := New(root).Read("next-race"); err != nil {
		t.Fatalf("staleness is off by default, got %v", err)
	}
	if _, err := New(root, WithStaleAfter(time.Hour)).Read("next-race"); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if _, err := New(root, WithStaleAfter(3*time.Hour)).Read("next-race"); err != nil {
		t.Fatalf("expected fresh file, got %v", err)
	}
}

func TestLoadDecodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "next-race", `{"name":"Italian Grand Prix","round":16}`)

	res, err := Load(New(root), "next-race", race{Name: "fallback"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback || !res.Available || res.Reason != nil {
		t.Fatalf("expected live data, got %+v", res)
	}
	if res.Value.Name != "Italian Grand Prix" || res.Value.Round != 16 {
		t.Fatalf("unexpected value %+v", res.Value)
	}
}

func TestLoadFallsBack(t *testing.T) {
	root := t.TempDir()
	g := New(root)
	fb := race{Name: "Belgian Grand Prix", Round: 13}

	res, err := Load(g, "next-race", fb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback || res.Available || res.Value != fb || !errors.Is(res.Reason, ErrNotFound) {
		t.Fatalf("expected fallback for missing file, got %+v", res)
	}

	// Valid JSON with the wrong shape can't be decoded into a race.
	writeFile(t, root, "next-race", `[1, 2, 3]`)
	res, err = Load(g, "next-race", fb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback || !errors.Is(res.Reason, ErrMalformed) {
		t.Fatalf("expected fallback for undecodable file, got %+v", res)
	}
}

func TestLoadAvailabilityFlag(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "latest-session", `{"available": false, "message": "Dati non disponibili"}`)
	writeFile(t, root, "next-race", `{"available": true, "name": "Monza"}`)

	res, err := Load(New(root), "latest-session", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback || res.Available {
		t.Fatalf("expected live but unavailable data, got %+v", res)
	}
	if string(res.Value) != `{"available": false, "message": "Dati non disponibili"}` {
		t.Fatalf("raw document should be relayed untouched, got %s", res.Value)
	}

	res2, err := Load(New(root), "next-race", race{})
	if err != nil || !res2.Available {
		t.Fatalf("expected available data, got %+v (%v)", res2, err)
	}
}

func TestLoadReturnsInvalidName(t *testing.T) {
	if _, err := Load(New(t.TempDir()), "../next-race", race{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestWriteAtomicallyAndRead(t *testing.T) {
	root := t.TempDir()
	g := New(root)

	if err := g.Write("drivers/driver_16", []byte(`{"name":"Charles Leclerc"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := g.Read("drivers/driver_16")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"name":"Charles Leclerc"}` {
		t.Fatalf("unexpected content %s", data)
	}

	entries, err := os.ReadDir(filepath.Join(root, "drivers"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}

	if err := g.Write("next-race", []byte(`not json`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if err := g.Write("../escape", []byte(`{}`)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestAge(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "next-race", `{}`)
	now := time.Now()
	modified := now.Add(-30 * time.Minute)
	if err := os.Chtimes(p, modified, modified); err != nil {
		t.Fatal(err)
	}

	g := New(root, WithClock(func() time.Time { return now }))
	age, err := g.Age("next-race")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if age < 29*time.Minute || age > 31*time.Minute {
		t.Fatalf("unexpected age %s", age)
	}
	if _, err := g.Age("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
