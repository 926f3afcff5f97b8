package manifest

import (
	"testing"
)

func TestMakeArtefacts(t *testing.T) {
	tests := []struct {
		name          string
		claims        []Claim
		wantCount     int
		wantConflicts []string
	}{
		{
			name: "word pages and feed",
			claims: []Claim{
				{Target: "synergy/index.html", Owner: "guff:pages"},
				{Target: "blue-sky-thinking/index.html", Owner: "guff:pages"},
				{Target: "rss.xml", Owner: "guff:feed"},
			},
			wantCount: 3,
		},
		{
			name: "static file shadows a page",
			claims: []Claim{
				{Target: "index.html", Owner: "guff:pages"},
				{Target: "index.html", Owner: "guff:static"},
			},
			wantCount:     1,
			wantConflicts: []string{"index.html"},
		},
		{
			name: "data file claimed three times",
			claims: []Claim{
				{Target: "words.json", Owner: "guff:data"},
				{Target: "words.json", Owner: "guff:static"},
				{Target: "words.json", Owner: "guff:pages"},
				{Target: "thanks.html", Owner: "guff:pages"},
			},
			wantCount:     2,
			wantConflicts: []string{"words.json"},
		},
		{
			name:      "nothing emitted",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			as := make([]Artefact, len(tt.claims))
			for i, c := range tt.claims {
				as[i] = Artefact{Claim: c}
			}

			artefacts, conflicts := makeArtefacts(as)

			if len(artefacts) != tt.wantCount {
				t.Errorf("got %d artefacts, want %d", len(artefacts), tt.wantCount)
			}
			if len(conflicts) != len(tt.wantConflicts) {
				t.Fatalf("got %d conflicts, want %d", len(conflicts), len(tt.wantConflicts))
			}
			for _, target := range tt.wantConflicts {
				if _, ok := conflicts[target]; !ok {
					t.Errorf("expected conflict on %q", target)
				}
			}
		})
	}
}

func TestManifestDirs(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "root files",
			paths: []string{"index.html", "rss.xml"},
			want:  []string{"."},
		},
		{
			name:  "word pages",
			paths: []string{"synergy/index.html", "deliverable/index.html"},
			want:  []string{".", "synergy", "deliverable"},
		},
		{
			name:  "nested static",
			paths: []string{"images/icons/tweet.svg", "images/logo.png"},
			want:  []string{".", "images", "images/icons"},
		},
		{
			name:  "unsafe paths ignored",
			paths: []string{"../escape/index.html", "/abs/index.html", "ok/index.html"},
			want:  []string{".", "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artefacts := make(map[string]ArtefactBuilder, len(tt.paths))
			for _, p := range tt.paths {
				artefacts[p] = nil
			}

			dirs := manifestDirs(artefacts)
			if dirs.Len() != len(tt.want) {
				t.Errorf("got dirs %v, want %v", dirs.Values(), tt.want)
			}
			for _, want := range tt.want {
				if !dirs.Has(want) {
					t.Errorf("expected directory %q", want)
				}
			}
		})
	}
}

func TestIsRel(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"synergy/index.html", false},
		{"..", true},
		{"../etc/passwd", true},
		{"..hidden/index.html", false},
		{".", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isRel(tt.path); got != tt.want {
			t.Errorf("isRel(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
