package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/olimci/guffipedia/pkg/version"

	gm "github.com/yuin/goldmark"
	gmext "github.com/yuin/goldmark/extension"
	gmparse "github.com/yuin/goldmark/parser"
	gmrenderer "github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the configuration for the build process.
type Config struct {
	Guffipedia ConfigMeta    `toml:"guffipedia" yaml:"guffipedia" json:"guffipedia"`
	Site       ConfigSite    `toml:"site" yaml:"site" json:"site"`
	Source     ConfigSource  `toml:"source" yaml:"source" json:"source"`
	Build      ConfigBuild   `toml:"build" yaml:"build" json:"build"`
	Words      ConfigWords   `toml:"words" yaml:"words" json:"words"`
	Feed       ConfigFeed    `toml:"feed" yaml:"feed" json:"feed"`
	Sitemap    ConfigSitemap `toml:"sitemap" yaml:"sitemap" json:"sitemap"`
	Deploy     ConfigDeploy  `toml:"deploy" yaml:"deploy" json:"deploy"`
}

type ConfigMeta struct {
	Version string `toml:"version" yaml:"version" json:"version"`
}

type ConfigSite struct {
	Title       string `toml:"title" yaml:"title" json:"title"`
	Description string `toml:"description" yaml:"description" json:"description"`
	URL         string `toml:"url" yaml:"url" json:"url"`
}

// ConfigSource selects where spreadsheet rows come from. File wins over URL.
type ConfigSource struct {
	URL     string   `toml:"url" yaml:"url" json:"url"`
	File    string   `toml:"file" yaml:"file" json:"file"`
	Timeout Duration `toml:"timeout" yaml:"timeout" json:"timeout"`
	Retries int      `toml:"retries" yaml:"retries" json:"retries"`
	EnvFile string   `toml:"env_file" yaml:"env_file" json:"env_file"`
}

type ConfigBuild struct {
	Output    string         `toml:"output" yaml:"output" json:"output"`
	DataDir   string         `toml:"data_dir" yaml:"data_dir" json:"data_dir"`
	Templates string         `toml:"templates" yaml:"templates" json:"templates"`
	Static    string         `toml:"static" yaml:"static" json:"static"`
	Exclude   []string       `toml:"exclude" yaml:"exclude" json:"exclude"`
	Minify    bool           `toml:"minify" yaml:"minify" json:"minify"`
	Markdown  ConfigGoldmark `toml:"markdown" yaml:"markdown" json:"markdown"`
}

type ConfigWords struct {
	IDPrefix      string `toml:"id_prefix" yaml:"id_prefix" json:"id_prefix"`
	Timezone      string `toml:"timezone" yaml:"timezone" json:"timezone"`
	TweetTemplate string `toml:"tweet_template" yaml:"tweet_template" json:"tweet_template"`
}

type ConfigFeed struct {
	Output string `toml:"output" yaml:"output" json:"output"`
	Prefix string `toml:"namespace_prefix" yaml:"namespace_prefix" json:"namespace_prefix"`
}

type ConfigSitemap struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Output  string `toml:"output" yaml:"output" json:"output"`
}

type ConfigDeploy struct {
	Region           string `toml:"region" yaml:"region" json:"region"`
	ProductionBranch string `toml:"production_branch" yaml:"production_branch" json:"production_branch"`
	ProductionBucket string `toml:"production_bucket" yaml:"production_bucket" json:"production_bucket"`
	StagingBucket    string `toml:"staging_bucket" yaml:"staging_bucket" json:"staging_bucket"`
	Prefix           string `toml:"prefix" yaml:"prefix" json:"prefix"`
	Repo             string `toml:"repo" yaml:"repo" json:"repo"`
	Concurrency      int    `toml:"concurrency" yaml:"concurrency" json:"concurrency"`
	LongTTL          int    `toml:"long_ttl" yaml:"long_ttl" json:"long_ttl"`
	ShortTTL         int    `toml:"short_ttl" yaml:"short_ttl" json:"short_ttl"`
}

type ConfigGoldmark struct {
	Extensions []string               `toml:"extensions" yaml:"extensions" json:"extensions"`
	Parser     ConfigGoldmarkParser   `toml:"parser" yaml:"parser" json:"parser"`
	Renderer   ConfigGoldmarkRenderer `toml:"renderer" yaml:"renderer" json:"renderer"`
}

type ConfigGoldmarkParser struct {
	AutoHeadingID bool `toml:"auto_heading_id" yaml:"auto_heading_id" json:"auto_heading_id"`
	Attribute     bool `toml:"attribute" yaml:"attribute" json:"attribute"`
}

type ConfigGoldmarkRenderer struct {
	Hardbreaks bool `toml:"hardbreaks" yaml:"hardbreaks" json:"hardbreaks"`
	XHTML      bool `toml:"XHTML" yaml:"XHTML" json:"XHTML"`
}

// DefaultConfig constructs a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Guffipedia: ConfigMeta{
			Version: version.String(),
		},
		Site: ConfigSite{
			Title:       "Guffipedia",
			Description: "Lucy Kellaway’s dictionary of business jargon and corporate nonsense",
			URL:         "https://ig.ft.com/sites/guffipedia/",
		},
		Source: ConfigSource{
			URL:     "https://bertha.ig.ft.com/republish/publish/gss/${SPREADSHEET_KEY}/data",
			Timeout: Duration(30 * time.Second),
			EnvFile: ".env",
		},
		Build: ConfigBuild{
			Output:    "dist",
			DataDir:   "client",
			Templates: "templates",
			Static:    "client",
			Exclude:   []string{"**/*.tmpl", "**/*.hbs", "**/*.scss", "**/.DS_Store"},
			Minify:    true,
			Markdown: ConfigGoldmark{
				Extensions: []string{"strikethrough", "linkify", "typographer"},
			},
		},
		Words: ConfigWords{
			IDPrefix: "GUFF",
			Timezone: "UTC",
		},
		Feed: ConfigFeed{
			Output: "rss.xml",
			Prefix: "guff",
		},
		Sitemap: ConfigSitemap{
			Enabled: true,
			Output:  "sitemap.xml",
		},
		Deploy: ConfigDeploy{
			Region:           "eu-west-1",
			ProductionBranch: "master",
			ProductionBucket: "callum-ig",
			StagingBucket:    "callum-ig-dev",
			Prefix:           "v1",
			Concurrency:      20,
			LongTTL:          31556926,
			ShortTTL:         60,
		},
	}
}

// Load loads a Config from a file, rejecting unknown keys.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := decodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate validates the Config and fills in blank values.
func (c *Config) Validate() error {
	if c.Guffipedia.Version != "" {
		v, err := version.Parse(c.Guffipedia.Version)
		if err != nil {
			return invalid("guffipedia.version: %v", err)
		}
		if !v.Compatible() {
			return invalid("guffipedia.version %s is newer than this build (%s)", v, version.String())
		}
	}

	c.Site.URL = strings.TrimSpace(c.Site.URL)
	if c.Site.URL == "" {
		return invalid("site.url is required")
	}
	if !(strings.HasPrefix(c.Site.URL, "http://") || strings.HasPrefix(c.Site.URL, "https://")) {
		return invalid("site.url must start with http:// or https:// (got %q)", c.Site.URL)
	}
	if _, err := url.Parse(c.Site.URL); err != nil {
		return invalid("site.url is not a valid URL (got %q): %v", c.Site.URL, err)
	}
	if !strings.HasSuffix(c.Site.URL, "/") {
		c.Site.URL += "/"
	}

	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Source.File = strings.TrimSpace(c.Source.File)
	if c.Source.URL == "" && c.Source.File == "" {
		return invalid("one of source.url or source.file is required")
	}
	if c.Source.Retries < 0 {
		return invalid("source.retries must be >= 0 (got %d)", c.Source.Retries)
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = Duration(30 * time.Second)
	}

	if strings.TrimSpace(c.Build.Output) == "" {
		c.Build.Output = "dist"
	}
	if strings.TrimSpace(c.Build.DataDir) == "" {
		c.Build.DataDir = "client"
	}
	if strings.TrimSpace(c.Build.Templates) == "" {
		c.Build.Templates = "templates"
	}
	if strings.TrimSpace(c.Build.Static) == "" {
		c.Build.Static = "client"
	}

	c.Words.IDPrefix = strings.TrimSpace(c.Words.IDPrefix)
	if strings.TrimSpace(c.Words.Timezone) == "" {
		c.Words.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Words.Timezone); err != nil {
		return invalid("words.timezone %q: %v", c.Words.Timezone, err)
	}

	if strings.TrimSpace(c.Feed.Output) == "" {
		c.Feed.Output = "rss.xml"
	}
	c.Feed.Output = strings.TrimPrefix(path.Clean("/"+c.Feed.Output), "/")
	if strings.TrimSpace(c.Feed.Prefix) == "" {
		c.Feed.Prefix = "guff"
	}
	if strings.ContainsAny(c.Feed.Prefix, ": \t") {
		return invalid("feed.namespace_prefix %q is not a valid XML prefix", c.Feed.Prefix)
	}

	if strings.TrimSpace(c.Sitemap.Output) == "" {
		c.Sitemap.Output = "sitemap.xml"
	}
	c.Sitemap.Output = strings.TrimPrefix(path.Clean("/"+c.Sitemap.Output), "/")
	if c.Sitemap.Enabled && c.Sitemap.Output == c.Feed.Output {
		return invalid("sitemap.output and feed.output are both %q", c.Feed.Output)
	}

	if c.Deploy.Region == "" {
		c.Deploy.Region = "eu-west-1"
	}
	if c.Deploy.ProductionBranch == "" {
		c.Deploy.ProductionBranch = "master"
	}
	if c.Deploy.Concurrency <= 0 {
		c.Deploy.Concurrency = 20
	}
	if c.Deploy.LongTTL <= 0 {
		c.Deploy.LongTTL = 31556926
	}
	if c.Deploy.ShortTTL <= 0 {
		c.Deploy.ShortTTL = 60
	}
	c.Deploy.Prefix = strings.Trim(c.Deploy.Prefix, "/")

	return nil
}

// Location returns the timezone submission dates are read in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Words.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WatchedPaths returns the directories the dev server rebuilds on.
func (c *Config) WatchedPaths() (paths []string, globs []string) {
	paths = make([]string, 0, 2)
	globs = make([]string, 0, 1)

	if c.Build.Templates != "" {
		paths = append(paths, c.Build.Templates)
	}
	if c.Build.Static != "" && c.Build.Static != c.Build.Templates {
		paths = append(paths, c.Build.Static)
	}
	if c.Source.File != "" {
		globs = append(globs, c.Source.File)
	}

	return paths, globs
}

func (cfg ConfigGoldmark) Build() gm.Markdown {
	var (
		exts       []gm.Extender
		parserOpts []gmparse.Option
		htmlOpts   []gmrenderer.Option
	)

	for _, name := range cfg.Extensions {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gfm":
			exts = append(exts, gmext.GFM)
		case "table", "tables":
			exts = append(exts, gmext.Table)
		case "strikethrough":
			exts = append(exts, gmext.Strikethrough)
		case "linkify":
			exts = append(exts, gmext.Linkify)
		case "typographer", "smartypants":
			exts = append(exts, gmext.Typographer)
		default:
		}
	}

	if cfg.Parser.AutoHeadingID {
		parserOpts = append(parserOpts, gmparse.WithAutoHeadingID())
	}
	if cfg.Parser.Attribute {
		parserOpts = append(parserOpts, gmparse.WithAttribute())
	}

	if cfg.Renderer.Hardbreaks {
		htmlOpts = append(htmlOpts, gmhtml.WithHardWraps())
	}
	if cfg.Renderer.XHTML {
		htmlOpts = append(htmlOpts, gmhtml.WithXHTML())
	}

	opts := make([]gm.Option, 0, 3)
	if len(exts) > 0 {
		opts = append(opts, gm.WithExtensions(exts...))
	}
	if len(parserOpts) > 0 {
		opts = append(opts, gm.WithParserOptions(parserOpts...))
	}
	if len(htmlOpts) > 0 {
		opts = append(opts, gm.WithRendererOptions(htmlOpts...))
	}

	return gm.New(opts...)
}
