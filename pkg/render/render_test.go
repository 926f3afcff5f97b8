package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/words"
)

func testWords(t *testing.T) *words.Collection {
	t.Helper()
	c, err := words.Derive([]words.Row{
		{
			Word:           "Synergy (re-imagined)",
			RelatedWords:   words.NameList{"Blue-sky thinking"},
			SubmissionDate: "2016-03-01",
			WordID:         "GUFF12",
			Definition:     "Two teams, *one* job",
			Perpetrator:    "A. Consultant",
		},
		{Word: "Blue-sky thinking", SubmissionDate: "2016-02-01", WordID: "GUFF7"},
	}, words.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDefaults(t *testing.T) {
	tmpl, err := Defaults(nil)
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}

	c := testWords(t)
	r, _ := c.Get("synergy-re-imagined")

	tests := []struct {
		name     string
		data     PageData
		contains []string
	}{
		{
			name: "definition",
			data: PageData{Page: PageDefinition, TrackingEnv: "p", Word: r},
			contains: []string{
				`data-tracking-env="p"`,
				"<h1 class=\"definition__word\">Synergy (re-imagined)</h1>",
				"<em>one</em>",
				`href="../blue-sky-thinking/"`,
				"Perpetrator: A. Consultant",
			},
		},
		{
			name: "main",
			data: PageData{Page: PageMain, TrackingEnv: "t", Words: c.Records(), Home: c.ByDate()},
			contains: []string{
				`data-tracking-env="t"`,
				"All 2 words",
				`<a href="synergy-re-imagined/">`,
			},
		},
		{
			name:     "thanks",
			data:     PageData{Page: PageThanks, TrackingEnv: "t", Site: Site{Title: "Guffipedia"}},
			contains: []string{"Thank you", "appear in Guffipedia soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Execute(&buf, tmpl, tt.data); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestParse_MissingTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"top.tmpl":    {Data: []byte("top")},
		"bottom.tmpl": {Data: []byte("bottom")},
		"main.tmpl":   {Data: []byte("main")},
	}

	_, err := Parse(fsys, ".", nil)
	if !errors.Is(err, ErrMissingTemplate) {
		t.Fatalf("err = %v, want ErrMissingTemplate", err)
	}
	if !strings.Contains(err.Error(), "definition") || !strings.Contains(err.Error(), "thanks") {
		t.Errorf("err = %v, want missing names listed", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"top.tmpl":        "<html>",
		"bottom.tmpl":     "</html>",
		"definition.tmpl": `{{ template "top" . }}{{ .Word.Word | upper }}{{ template "bottom" . }}`,
		"main.tmpl":       "main",
		"thanks.tmpl":     "thanks",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tmpl, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	r, _ := testWords(t).Get("blue-sky-thinking")
	var buf bytes.Buffer
	if err := Execute(&buf, tmpl, PageData{Page: PageDefinition, Word: r}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<html>BLUE-SKY THINKING</html>" {
		t.Errorf("got %q", got)
	}

	if _, err := Load(filepath.Join(dir, "absent"), nil); err != nil {
		t.Errorf("missing dir should fall back to defaults: %v", err)
	}
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	err := Failure(&buf, FailureData{
		Summary: "1 error",
		Events: []events.Event{
			{Level: events.Error, Step: "guff:derive", Message: "duplicate slug", Error: errors.New("<dont>")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "[guff:derive] duplicate slug: &lt;dont&gt;") {
		t.Errorf("failure page missing event:\n%s", out)
	}
}
