package deploy

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/olimci/guffipedia/pkg/config"
	giturls "github.com/whilp/git-urls"
)

var (
	ErrNotGitHub      = errors.New("origin is not a github.com URL")
	ErrDetachedHead   = errors.New("HEAD is not a branch")
	ErrMissingOrigin  = errors.New("no origin remote")
	ErrMissingProject = errors.New("cannot determine repo name")
)

// Repo describes the checkout being deployed.
type Repo struct {
	Branch string
	// Name is the GitHub "owner/name" of the origin remote.
	Name string
}

// Target is where a deploy uploads to.
type Target struct {
	Region string
	Bucket string
	// Prefix is the key prefix, always ending in "/".
	Prefix     string
	Production bool
}

// WebsiteURL is the S3 static website address of the target. It is the only
// S3 URL form that resolves index.html.
func (t Target) WebsiteURL() string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com/%s", t.Bucket, t.Region, t.Prefix)
}

// Discover reads the current branch and origin repo name from the git checkout
// containing dir. When name is set it is used instead of the origin remote.
func Discover(dir, name string) (Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Repo{}, fmt.Errorf("open git repository: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return Repo{}, fmt.Errorf("read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return Repo{}, ErrDetachedHead
	}

	repo := Repo{
		Branch: head.Name().Short(),
		Name:   strings.Trim(name, "/"),
	}
	if repo.Name != "" {
		return repo, nil
	}

	origin, err := r.Remote("origin")
	if err != nil {
		return Repo{}, fmt.Errorf("%w: %w", ErrMissingOrigin, err)
	}
	urls := origin.Config().URLs
	if len(urls) == 0 {
		return Repo{}, ErrMissingOrigin
	}

	repo.Name, err = ParseGitHubRepo(urls[0])
	if err != nil {
		return Repo{}, err
	}
	return repo, nil
}

// ParseGitHubRepo extracts "owner/name" from a github.com remote URL in any of
// the https, ssh or scp-like forms.
func ParseGitHubRepo(raw string) (string, error) {
	u, err := giturls.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", raw, err)
	}
	if !strings.EqualFold(u.Hostname(), "github.com") {
		return "", fmt.Errorf("%w: %s", ErrNotGitHub, raw)
	}

	p := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	parts := strings.Split(p, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingProject, raw)
	}
	return parts[0] + "/" + parts[1], nil
}

// Resolve picks the bucket and prefix for repo. The production branch goes to
// the production bucket under "<prefix>/<repo>/", any other branch to the
// staging bucket under "<prefix>/<repo>/<branch>/".
func Resolve(cfg config.ConfigDeploy, repo Repo) (Target, error) {
	if repo.Name == "" {
		return Target{}, ErrMissingProject
	}

	t := Target{Region: cfg.Region}
	if repo.Branch == cfg.ProductionBranch {
		t.Production = true
		t.Bucket = cfg.ProductionBucket
		t.Prefix = path.Join(cfg.Prefix, repo.Name) + "/"
	} else {
		t.Bucket = cfg.StagingBucket
		t.Prefix = path.Join(cfg.Prefix, repo.Name, repo.Branch) + "/"
	}

	t.Prefix = strings.TrimPrefix(t.Prefix, "/")
	return t, nil
}
