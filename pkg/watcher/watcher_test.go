package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func mkfile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events:
		return ev
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "guffipedia.toml")
	mkfile(t, configPath, "[source]\nfile = \"rows.json\"\n")
	mkfile(t, filepath.Join(root, "rows.json"), "[]")
	mkfile(t, filepath.Join(root, "templates", "top.tmpl"), "top")
	mkfile(t, filepath.Join(root, "client", "styles.css"), "body{}")

	w, err := New(configPath, 50*time.Millisecond, "dist", "dist/**", "client/words.json", "client/homewords.json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	mkfile(t, filepath.Join(root, "client", "words.json"), "{}")
	mkfile(t, filepath.Join(root, "templates", "top.tmpl"), "top changed")

	ev := waitEvent(t, w)
	if ev.Config {
		t.Errorf("unexpected config change: %+v", ev)
	}
	if !slices.Contains(ev.Paths, filepath.Join(root, "templates", "top.tmpl")) {
		t.Errorf("template change missing from %v", ev.Paths)
	}
	if slices.Contains(ev.Paths, filepath.Join(root, "client", "words.json")) {
		t.Errorf("ignored data file reported: %v", ev.Paths)
	}

	mkfile(t, filepath.Join(root, "rows.json"), `[{"word":"Synergy"}]`)
	ev = waitEvent(t, w)
	if !slices.Contains(ev.Paths, filepath.Join(root, "rows.json")) {
		t.Errorf("source file change missing from %v", ev.Paths)
	}

	mkfile(t, configPath, "[source]\nfile = \"rows.json\"\nretries = 1\n")
	ev = waitEvent(t, w)
	if !ev.Config || ev.Reason != "config change" {
		t.Errorf("expected config change, got %+v", ev)
	}
}

func TestWatcher_Ignored(t *testing.T) {
	w := &Watcher{root: "/site", ignore: []string{"dist", "dist/**", "client/words.json"}}

	tests := []struct {
		path string
		want bool
	}{
		{"/site/dist", true},
		{"/site/dist/synergy/index.html", true},
		{"/site/client/words.json", true},
		{"/site/client/.words.json.tmp-1234", true},
		{"/site/client/styles.css", false},
		{"/site/templates/top.tmpl", false},
	}

	for _, tt := range tests {
		if got := w.ignored(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
