package internal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestReloadMiddleware(t *testing.T) {
	dist := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dist, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("synergy/index.html", "<html><body><h1>Synergy</h1></body></html>")
	write("rss.xml", "<rss></rss>")

	handler := ReloadMiddleware(http.FileServer(http.Dir(dist)))

	tests := []struct {
		name       string
		path       string
		wantScript bool
		wantStatus int
	}{
		{name: "html page", path: "/synergy/", wantScript: true, wantStatus: http.StatusOK},
		{name: "feed", path: "/rss.xml", wantScript: false, wantStatus: http.StatusOK},
		{name: "missing", path: "/nope/", wantScript: false, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			body := rec.Body.String()
			if got := strings.Contains(body, reloadPath); got != tt.wantScript {
				t.Fatalf("script injected = %v, want %v: %s", got, tt.wantScript, body)
			}
			if tt.wantScript {
				if !strings.Contains(body, "</script></body>") {
					t.Fatalf("script not placed before </body>: %s", body)
				}
				if rec.Header().Get("Content-Length") != strconv.Itoa(len(body)) {
					t.Fatalf("content length %q does not match body length %d", rec.Header().Get("Content-Length"), len(body))
				}
			}
		})
	}
}

func TestInjectReloadScript(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{name: "body", html: "<body>x</body></html>", want: "x<script>"},
		{name: "html only", html: "<html>x</html>", want: "x<script>"},
		{name: "fragment", html: "x", want: "x<script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := injectReloadScript(tt.html); !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q in %q", tt.want, got)
			}
		})
	}
}
