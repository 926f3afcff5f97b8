package manifest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/iofs"
)

func text(s string) ArtefactBuilder {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestBuild(t *testing.T) {
	dist := t.TempDir()
	for rel, content := range map[string]string{
		"index.html":              "old home",
		"removed-word/index.html": "gone",
	} {
		path := filepath.Join(dist, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := New()
	m.Emit(Artefact{Claim: NewInternalClaim("guff:pages", "index.html"), Builder: text("home")})
	m.Emit(Artefact{Claim: NewInternalClaim("guff:pages", "synergy/index.html"), Builder: text("synergy")})
	m.Emit(Artefact{Claim: NewInternalClaim("guff:feed", "rss.xml"), Builder: text("<rss/>")}.Post(
		func(claim Claim, next ArtefactBuilder) ArtefactBuilder {
			return func(w io.Writer) error {
				var b strings.Builder
				if err := next(&b); err != nil {
					return err
				}
				_, err := io.WriteString(w, strings.ToUpper(b.String()))
				return err
			}
		},
	))

	if err := m.Build(iofs.FromOS(dist), nil, WithMaxWorkers(2)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := map[string]string{
		"index.html":         "home",
		"synergy/index.html": "synergy",
		"rss.xml":            "<RSS/>",
	}
	for rel, content := range want {
		got, err := os.ReadFile(filepath.Join(dist, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(got) != content {
			t.Errorf("%s = %q, want %q", rel, got, content)
		}
	}

	if _, err := os.Stat(filepath.Join(dist, "removed-word")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale directory not removed: %v", err)
	}
}

func TestBuild_Conflicts(t *testing.T) {
	dist := t.TempDir()

	m := New()
	m.Emit(Artefact{Claim: NewInternalClaim("guff:pages", "index.html"), Builder: text("page")})
	m.Emit(Artefact{Claim: NewInternalClaim("guff:static", "index.html"), Builder: text("static")})
	m.Emit(Artefact{Claim: NewInternalClaim("guff:feed", "rss.xml"), Builder: text("<rss/>")})

	collector := events.NewCollector(nil)
	err := m.Build(iofs.FromOS(dist), collector)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("expected ErrConflicts, got %v", err)
	}
	if !collector.HasLevel(events.Error) {
		t.Error("expected a conflict event")
	}

	entries, err := os.ReadDir(dist)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}

	if err := m.Build(iofs.FromOS(dist), nil, IgnoreConflicts()); err != nil {
		t.Fatalf("Build with IgnoreConflicts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dist, "rss.xml")); err != nil {
		t.Errorf("rss.xml not written: %v", err)
	}
}

func TestBuild_UnsafePath(t *testing.T) {
	m := New()
	m.Emit(Artefact{Claim: NewInternalClaim("guff:pages", "../outside.html"), Builder: text("x")})

	if err := m.Build(iofs.FromOS(t.TempDir()), nil); !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected ErrUnsafePath, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	const count K[int] = "count"
	const name K[string] = "name"

	m := New()
	SetAs(m, count, 3)

	if got := GetAs(m, count); got != 3 {
		t.Errorf("GetAs(count) = %d, want 3", got)
	}
	if got := GetAs(m, name); got != "" {
		t.Errorf("GetAs(name) = %q, want zero value", got)
	}

	m.Set(string(name), 42)
	if got := GetAs(m, name); got != "" {
		t.Errorf("GetAs with wrong type = %q, want zero value", got)
	}
}
