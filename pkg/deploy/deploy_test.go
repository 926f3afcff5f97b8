package deploy

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
)

func TestParseGitHubRepo(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{name: "https", url: "https://github.com/Financial-Times/guffipedia.git", want: "Financial-Times/guffipedia"},
		{name: "https no suffix", url: "https://github.com/Financial-Times/guffipedia", want: "Financial-Times/guffipedia"},
		{name: "scp", url: "git@github.com:Financial-Times/guffipedia.git", want: "Financial-Times/guffipedia"},
		{name: "ssh", url: "ssh://git@github.com/Financial-Times/guffipedia.git", want: "Financial-Times/guffipedia"},
		{name: "other host", url: "https://gitlab.com/ft/guffipedia.git", wantErr: ErrNotGitHub},
		{name: "no repo", url: "https://github.com/Financial-Times", wantErr: ErrMissingProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGitHubRepo(tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := config.DefaultConfig().Deploy

	tests := []struct {
		name   string
		repo   Repo
		bucket string
		prefix string
		prod   bool
	}{
		{
			name:   "production",
			repo:   Repo{Branch: "master", Name: "Financial-Times/guffipedia"},
			bucket: "callum-ig",
			prefix: "v1/Financial-Times/guffipedia/",
			prod:   true,
		},
		{
			name:   "staging",
			repo:   Repo{Branch: "new-words", Name: "Financial-Times/guffipedia"},
			bucket: "callum-ig-dev",
			prefix: "v1/Financial-Times/guffipedia/new-words/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(cfg, tt.repo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Bucket != tt.bucket || got.Prefix != tt.prefix || got.Production != tt.prod {
				t.Fatalf("unexpected target: %+v", got)
			}
		})
	}

	if _, err := Resolve(cfg, Repo{Branch: "master"}); !errors.Is(err, ErrMissingProject) {
		t.Fatalf("expected ErrMissingProject, got %v", err)
	}
}

func TestTarget_WebsiteURL(t *testing.T) {
	target := Target{Region: "eu-west-1", Bucket: "callum-ig", Prefix: "v1/ft/guffipedia/"}
	want := "http://callum-ig.s3-website-eu-west-1.amazonaws.com/v1/ft/guffipedia/"
	if got := target.WebsiteURL(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"index.html", "max-age=60"},
		{"scripts/main.rev-3f2a1b.js", "max-age=31556926"},
		{"images/logo.rev-ab12.svg", "max-age=31556926"},
		{"rev-notes.txt", "max-age=60"},
		{"styles.css", "max-age=60"},
	}

	for _, tt := range tests {
		if got := CacheControl(tt.name, 31556926, 60); got != tt.want {
			t.Errorf("CacheControl(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"thanks", "text/html"},
		{"index.html", "text/html; charset=utf-8"},
		{"blob.guffunknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentType(tt.name); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

type fakeS3 struct {
	mu     sync.Mutex
	puts   map[string]*s3.PutObjectInput
	bodies map[string]string
	fail   string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, errors.New("access denied")
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.puts == nil {
		f.puts = make(map[string]*s3.PutObjectInput)
		f.bodies = make(map[string]string)
	}
	f.puts[key] = in
	f.bodies[key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func testDist() fstest.MapFS {
	return fstest.MapFS{
		"index.html":                 {Data: []byte("<p>home</p>")},
		"thanks":                     {Data: []byte("<p>thanks</p>")},
		"rss.xml":                    {Data: []byte("<rss/>")},
		"synergy/index.html":         {Data: []byte("<p>synergy</p>")},
		"scripts/main.rev-3f2a1b.js": {Data: []byte("console.log(1)")},
	}
}

func TestUploader_Upload(t *testing.T) {
	cfg := config.DefaultConfig().Deploy
	target := Target{Region: cfg.Region, Bucket: "callum-ig-dev", Prefix: "v1/ft/guffipedia/branch/"}
	dist := testDist()

	files, err := List(dist, target, cfg)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != len(dist) {
		t.Fatalf("expected %d files, got %d", len(dist), len(files))
	}

	client := new(fakeS3)
	var (
		mu       sync.Mutex
		progress []int
	)
	uploader := &Uploader{
		Client:      client,
		Concurrency: 2,
		OnProgress: func(p Progress) {
			mu.Lock()
			progress = append(progress, p.Done)
			mu.Unlock()
		},
	}

	got, err := uploader.Upload(context.Background(), dist, target.Bucket, files)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got.Done != len(files) || got.Total != len(files) {
		t.Fatalf("unexpected progress: %+v", got)
	}

	sort.Ints(progress)
	for i, n := range progress {
		if n != i+1 {
			t.Fatalf("unexpected progress sequence: %v", progress)
		}
	}

	put := client.puts["v1/ft/guffipedia/branch/scripts/main.rev-3f2a1b.js"]
	if put == nil {
		t.Fatalf("revved script not uploaded: %v", client.puts)
	}
	if aws.ToString(put.Bucket) != "callum-ig-dev" {
		t.Fatalf("unexpected bucket %q", aws.ToString(put.Bucket))
	}
	if aws.ToString(put.CacheControl) != "max-age=31556926" {
		t.Fatalf("unexpected cache control %q", aws.ToString(put.CacheControl))
	}

	thanks := client.puts["v1/ft/guffipedia/branch/thanks"]
	if thanks == nil || aws.ToString(thanks.ContentType) != "text/html" {
		t.Fatalf("expected extensionless file served as html, got %+v", thanks)
	}
	if client.bodies["v1/ft/guffipedia/branch/synergy/index.html"] != "<p>synergy</p>" {
		t.Fatalf("unexpected body: %q", client.bodies["v1/ft/guffipedia/branch/synergy/index.html"])
	}
}

func TestUploader_Failure(t *testing.T) {
	cfg := config.DefaultConfig().Deploy
	target := Target{Bucket: "b", Prefix: "p/"}
	dist := testDist()

	files, err := List(dist, target, cfg)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	collector := events.NewCollector(nil)
	uploader := &Uploader{
		Client:      &fakeS3{fail: "p/rss.xml"},
		Concurrency: 1,
		Events:      collector,
	}

	if _, err := uploader.Upload(context.Background(), dist, target.Bucket, files); err == nil {
		t.Fatal("expected upload error")
	}
	if !collector.HasLevel(events.Error) {
		t.Fatal("expected an error event")
	}
}

func initRepo(t *testing.T, origin string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	r, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("guff\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := r.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Lucy", Email: "lucy@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if origin != "" {
		_, err := r.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{origin}})
		if err != nil {
			t.Fatalf("remote: %v", err)
		}
	}

	return dir, r
}

func TestDiscover(t *testing.T) {
	dir, r := initRepo(t, "git@github.com:Financial-Times/guffipedia.git")

	repo, err := Discover(dir, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if repo.Name != "Financial-Times/guffipedia" {
		t.Fatalf("unexpected repo %q", repo.Name)
	}
	if repo.Branch != "master" {
		t.Fatalf("expected master, got %q", repo.Branch)
	}

	wt, err := r.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	err = wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName("new-words"), Create: true})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	repo, err = Discover(dir, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if repo.Branch != "new-words" {
		t.Fatalf("expected new-words, got %q", repo.Branch)
	}
}

func TestDiscover_Remotes(t *testing.T) {
	dir, _ := initRepo(t, "https://gitlab.com/ft/guffipedia.git")
	if _, err := Discover(dir, ""); !errors.Is(err, ErrNotGitHub) {
		t.Fatalf("expected ErrNotGitHub, got %v", err)
	}

	repo, err := Discover(dir, "ft/guffipedia")
	if err != nil {
		t.Fatalf("explicit repo: %v", err)
	}
	if repo.Name != "ft/guffipedia" {
		t.Fatalf("unexpected repo %q", repo.Name)
	}

	bare, _ := initRepo(t, "")
	if _, err := Discover(bare, ""); !errors.Is(err, ErrMissingOrigin) {
		t.Fatalf("expected ErrMissingOrigin, got %v", err)
	}
}
