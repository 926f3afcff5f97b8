package build

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/source"
	"github.com/olimci/guffipedia/pkg/steps"
	"github.com/olimci/guffipedia/pkg/words"
)

func testRows() []words.Row {
	return []words.Row{
		{
			Word:           "Synergy (re-imagined)",
			RelatedWords:   words.NameList{"Blue-sky thinking", "Missing word"},
			SubmissionDate: "2016-03-01",
			WordID:         "GUFF12",
			Definition:     "Two teams, one job",
		},
		{Word: "Blue-sky thinking", SubmissionDate: "2016-02-01", WordID: "GUFF7"},
		{Word: "Deliverable", SubmissionDate: "2016-01-15", WordID: "GUFF3"},
	}
}

type fixture struct {
	root      string
	dist      string
	cfg       *config.Config
	opts      *config.Options
	collector *events.Collector
}

func newFixture(t *testing.T, rows []words.Row) *fixture {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "client", "styles", "main.css"), "body { color: red; }")
	writeFile(t, filepath.Join(root, "client", "words.json"), "{}")
	writeFile(t, filepath.Join(root, "client", "partial.hbs"), "{{ skipped }}")

	cfg := config.DefaultConfig()
	cfg.Build.Minify = false
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	collector := events.NewCollector(nil)
	opts := config.DefaultOptions().
		WithContext(context.Background()).
		WithConfig(filepath.Join(root, "guffipedia.toml")).
		WithEventHandler(collector).
		WithRand(rand.New(rand.NewPCG(1, 2))).
		WithFetcher(source.FetcherFunc(func(context.Context) ([]words.Row, error) {
			return rows, nil
		}))

	return &fixture{
		root:      root,
		dist:      filepath.Join(root, "dist"),
		cfg:       cfg,
		opts:      opts,
		collector: collector,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestExecute_Site(t *testing.T) {
	f := newFixture(t, testRows())
	writeFile(t, filepath.Join(f.dist, "stale", "index.html"), "old")

	if err := Execute(Site(), f.cfg, f.opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, rel := range []string{
		"index.html",
		"thanks.html",
		"rss.xml",
		"sitemap.xml",
		"words.json",
		"homewords.json",
		"styles/main.css",
		"synergy-re-imagined/index.html",
		"blue-sky-thinking/index.html",
		"deliverable/index.html",
	} {
		if !exists(filepath.Join(f.dist, rel)) {
			t.Errorf("missing %s", rel)
		}
	}
	for _, rel := range []string{"stale", "partial.hbs"} {
		if exists(filepath.Join(f.dist, rel)) {
			t.Errorf("unexpected %s in dist", rel)
		}
	}

	page := readFile(t, filepath.Join(f.dist, "synergy-re-imagined", "index.html"))
	if !strings.Contains(page, "Synergy (re-imagined)") || !strings.Contains(page, `data-tracking-env="t"`) {
		t.Error("definition page missing word or tracking env")
	}

	data := readFile(t, filepath.Join(f.root, "client", "words.json"))
	if !strings.Contains(data, `"synergy-re-imagined": {`) {
		t.Errorf("data dir words.json not refreshed: %.80s", data)
	}
	if got := readFile(t, filepath.Join(f.dist, "words.json")); got != data {
		t.Error("dist and data dir words.json differ")
	}

	if warns := f.collector.AtLevel(events.Warn); len(warns) != 1 {
		t.Errorf("warnings = %d, want 1 for the dangling related word", len(warns))
	}
}

func TestExecute_SingleWorker(t *testing.T) {
	f := newFixture(t, testRows())
	f.opts.WithMaxWorkers(1)

	errc := make(chan error, 1)
	go func() {
		errc <- Execute(Site(), f.cfg, f.opts)
	}()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Execute with one worker did not finish")
	}

	for _, rel := range []string{"index.html", "rss.xml", "deliverable/index.html"} {
		if !exists(filepath.Join(f.dist, rel)) {
			t.Errorf("missing %s", rel)
		}
	}
}

func TestExecute_SingleWorkerFailure(t *testing.T) {
	rows := append(testRows(), words.Row{Word: "deliverable"})
	f := newFixture(t, rows)
	f.opts.WithMaxWorkers(1)

	errc := make(chan error, 1)
	go func() {
		errc <- Execute(Site(), f.cfg, f.opts)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, words.ErrDuplicateSlug) {
			t.Fatalf("err = %v, want ErrDuplicateSlug", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("failing Execute with one worker did not finish")
	}
}

func TestExecute_Production(t *testing.T) {
	f := newFixture(t, testRows())
	f.cfg.Build.Minify = true
	f.opts.WithEnv(config.Production)

	if err := Execute(Site(), f.cfg, f.opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	index := readFile(t, filepath.Join(f.dist, "index.html"))
	if !strings.Contains(index, "tracking-env=p") && !strings.Contains(index, `tracking-env="p"`) {
		t.Error("production build not tagged with tracking env p")
	}
	if css := readFile(t, filepath.Join(f.dist, "styles", "main.css")); css != "body{color:red}" {
		t.Errorf("css not minified: %q", css)
	}
}

func TestExecute_CollisionWritesNothing(t *testing.T) {
	rows := append(testRows(), words.Row{Word: "deliverable"})
	f := newFixture(t, rows)
	writeFile(t, filepath.Join(f.dist, "keep.txt"), "keep")

	err := Execute(Site(), f.cfg, f.opts)
	if !errors.Is(err, words.ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}
	if !errors.Is(err, ErrBuildFailed) {
		t.Errorf("err = %v, want ErrBuildFailed", err)
	}

	if exists(filepath.Join(f.dist, "index.html")) {
		t.Error("index.html written despite failure")
	}
	if !exists(filepath.Join(f.dist, "keep.txt")) {
		t.Error("existing dist touched despite failure")
	}
	if got := readFile(t, filepath.Join(f.root, "client", "words.json")); got != "{}" {
		t.Error("data dir written despite failure")
	}
}

func TestExecute_Strict(t *testing.T) {
	f := newFixture(t, testRows())
	f.opts.WithFailOnWarn()

	err := Execute(Site(), f.cfg, f.opts)
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v, want ErrBuildFailed", err)
	}
	if exists(filepath.Join(f.dist, "index.html")) {
		t.Error("output written despite warnings in strict mode")
	}
}

func TestExecute_DevFailurePage(t *testing.T) {
	f := newFixture(t, []words.Row{{Word: "Pivot", WordID: "NOPE1"}})
	f.opts.WithDev()

	if err := Execute(Site(), f.cfg, f.opts); !errors.Is(err, words.ErrWordIDPrefix) {
		t.Fatalf("err = %v, want ErrWordIDPrefix", err)
	}

	page := readFile(t, filepath.Join(f.dist, "index.html"))
	if !strings.Contains(page, "Build failed") || !strings.Contains(page, "NOPE1") {
		t.Errorf("failure page missing details:\n%s", page)
	}
}

func TestExecute_DataOnly(t *testing.T) {
	f := newFixture(t, testRows())

	if err := Execute(Data(), f.cfg, f.opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if exists(f.dist) {
		t.Error("data plan wrote dist")
	}
	for _, name := range []string{steps.WordsFile, steps.HomeWordsFile} {
		if !exists(filepath.Join(f.root, "client", name)) {
			t.Errorf("missing data file %s", name)
		}
	}
}

func TestExecute_FetchError(t *testing.T) {
	f := newFixture(t, nil)
	f.opts.WithFetcher(source.FetcherFunc(func(context.Context) ([]words.Row, error) {
		return nil, source.ErrStatus
	}))

	if err := Execute(Site(), f.cfg, f.opts); !errors.Is(err, source.ErrStatus) {
		t.Fatalf("err = %v, want ErrStatus", err)
	}
}

func TestNewDAG(t *testing.T) {
	a := steps.StepID{Owner: "t", Name: "a"}
	b := steps.StepID{Owner: "t", Name: "b"}
	noop := func(context.Context, steps.StepContext) error { return nil }

	tests := []struct {
		name  string
		steps []steps.Step
		want  error
	}{
		{
			name:  "duplicate",
			steps: []steps.Step{steps.StepFunc(a, noop), steps.StepFunc(a, noop)},
			want:  ErrDuplicateStep,
		},
		{
			name:  "self",
			steps: []steps.Step{steps.StepFunc(a, noop).WithDeps(a)},
			want:  ErrSelfDependency,
		},
		{
			name:  "unresolved",
			steps: []steps.Step{steps.StepFunc(a, noop).WithDeps(b)},
			want:  ErrUnresolvedDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newDAG(tt.steps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunSteps_Cycle(t *testing.T) {
	a := steps.StepID{Owner: "t", Name: "a"}
	b := steps.StepID{Owner: "t", Name: "b"}
	noop := func(context.Context, steps.StepContext) error { return nil }

	f := newFixture(t, nil)
	err := Execute(Plan{Steps: []steps.Step{
		steps.StepFunc(a, noop).WithDeps(b),
		steps.StepFunc(b, noop).WithDeps(a),
	}}, f.cfg, f.opts)
	if !errors.Is(err, ErrCircularDependency) {
		t.Errorf("err = %v, want ErrCircularDependency", err)
	}
}
