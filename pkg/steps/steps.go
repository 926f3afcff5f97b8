package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/olimci/guffipedia/pkg/feed"
	"github.com/olimci/guffipedia/pkg/manifest"
	"github.com/olimci/guffipedia/pkg/render"
	"github.com/olimci/guffipedia/pkg/sitemap"
	"github.com/olimci/guffipedia/pkg/steps/keys"
	"github.com/olimci/guffipedia/pkg/utils/fileutils"
	"github.com/olimci/guffipedia/pkg/words"
)

const (
	WordsFile     = "words.json"
	HomeWordsFile = "homewords.json"
	ThanksFile    = "thanks.html"
	IndexFile     = "index.html"
)

var ErrUnsafePath = errors.New("path escapes project")

var (
	IDFetch     = StepID{Owner: "guff", Name: "fetch"}
	IDDerive    = StepID{Owner: "guff", Name: "derive"}
	IDData      = StepID{Owner: "guff", Name: "data"}
	IDTemplates = StepID{Owner: "guff", Name: "templates"}
	IDPages     = StepID{Owner: "guff", Name: "pages"}
	IDFeed      = StepID{Owner: "guff", Name: "feed"}
	IDSitemap   = StepID{Owner: "guff", Name: "sitemap"}
	IDStatic    = StepID{Owner: "guff", Name: "static"}
)

// All returns every step of a full site build.
func All() []Step {
	return []Step{
		StepFetch(),
		StepDerive(),
		StepData(),
		StepTemplates(),
		StepPages(),
		StepFeed(),
		StepSitemap(),
		StepStatic(),
	}
}

// Data returns the steps that refresh the word data files only.
func Data() []Step {
	return []Step{
		StepFetch(),
		StepDerive(),
		StepData(),
	}
}

// StepFetch loads the raw spreadsheet rows.
func StepFetch() Step {
	return StepFunc(IDFetch, func(ctx context.Context, sc StepContext) error {
		opts := sc.Options()

		fetcher := opts.Fetcher
		if fetcher == nil {
			_, root := sc.Source()
			f, err := NewFetcher(sc.Config(), root, sc.Events())
			if err != nil {
				return err
			}
			fetcher = f
		}

		rows, err := fetcher.Fetch(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			sc.Warnf("", "source returned no rows")
		}
		sc.Infof("fetched %d rows", len(rows))

		Set(sc, keys.Rows, rows)
		return nil
	}).WithWrites(string(keys.Rows))
}

// StepDerive links the rows into the words collection and picks home words.
func StepDerive() Step {
	return StepFunc(IDDerive, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		rows := Get(sc, keys.Rows)

		tweet, err := words.ParseTweetTemplate(cfg.Words.TweetTemplate)
		if err != nil {
			return err
		}

		c, err := words.Derive(rows, words.Options{
			IDPrefix: cfg.Words.IDPrefix,
			Location: cfg.Location(),
			SiteURL:  cfg.Site.URL,
			Tweet:    tweet,
			Events:   sc.Events(),
		})
		if err != nil {
			return err
		}

		home := words.SelectHome(c, sc.Options().Rand)
		sc.Debugf("derived %d words, home: %s", c.Len(), strings.Join(home.Slugs(), ", "))

		Set(sc, keys.Words, c)
		Set(sc, keys.Home, home)
		return nil
	}).WithDeps(IDFetch).WithReads(string(keys.Rows)).WithWrites(string(keys.Words), string(keys.Home))
}

// StepData emits the words and home words documents, into dist and back into
// the data directory.
func StepData() Step {
	return StepFunc(IDData, func(ctx context.Context, sc StepContext) error {
		c := Get(sc, keys.Words)
		home := Get(sc, keys.Home)

		docs := []manifest.Artefact{
			{Claim: manifest.NewInternalClaim(IDData.String(), WordsFile), Builder: c.WriteJSON},
			{Claim: manifest.NewInternalClaim(IDData.String(), HomeWordsFile), Builder: home.WriteJSON},
		}
		for _, doc := range docs {
			sc.Emit(doc)
		}

		Set(sc, keys.DataFiles, docs)
		return nil
	}).WithDeps(IDDerive).WithReads(string(keys.Words), string(keys.Home)).WithWrites(string(keys.DataFiles))
}

// StepTemplates parses the page templates.
func StepTemplates() Step {
	return StepFunc(IDTemplates, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		_, root := sc.Source()

		dir, err := cleanFSPath(cfg.Build.Templates)
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}

		tmpl, err := render.Load(filepath.Join(root, filepath.FromSlash(dir)), cfg.Build.Markdown.Build())
		if err != nil {
			return fmt.Errorf("failed to parse templates: %w", err)
		}

		Set(sc, keys.Templates, tmpl)
		return nil
	}).WithWrites(string(keys.Templates))
}

// StepPages renders one page per word plus the index and thanks pages.
func StepPages() Step {
	return StepFunc(IDPages, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		opts := sc.Options()
		c := Get(sc, keys.Words)
		home := Get(sc, keys.Home)
		tmpl := Get(sc, keys.Templates)

		m := NewMinifier(cfg.Build.Minify)

		base := render.PageData{
			Env:         opts.Env.String(),
			TrackingEnv: opts.Env.TrackingEnv(),
			Site: render.Site{
				Title:       cfg.Site.Title,
				Description: cfg.Site.Description,
				URL:         cfg.Site.URL,
				FeedURL:     cfg.Site.URL + cfg.Feed.Output,
			},
		}

		emit := func(target string, data render.PageData) {
			sc.Emit(manifest.Artefact{
				Claim: manifest.NewInternalClaim(IDPages.String(), target),
				Builder: func(w io.Writer) error {
					return render.Execute(w, tmpl, data)
				},
			}.Post(m))
		}

		for _, r := range c.Records() {
			data := base
			data.Page = render.PageDefinition
			data.Word = r
			emit(path.Join(r.Slug, IndexFile), data)
		}

		data := base
		data.Page = render.PageMain
		data.Words = c.Records()
		data.Home = home.Records()
		emit(IndexFile, data)

		data = base
		data.Page = render.PageThanks
		emit(ThanksFile, data)

		sc.Debugf("rendered %d pages", c.Len()+2)
		return nil
	}).WithDeps(IDDerive, IDTemplates).WithReads(string(keys.Words), string(keys.Home), string(keys.Templates))
}

// StepFeed emits the RSS feed.
func StepFeed() Step {
	return StepFunc(IDFeed, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		c := Get(sc, keys.Words)

		ch := feed.Channel{
			Title:       cfg.Site.Title,
			Link:        cfg.Site.URL,
			Description: cfg.Site.Description,
			Prefix:      cfg.Feed.Prefix,
			Self:        cfg.Feed.Output,
		}

		sc.Emit(manifest.Artefact{
			Claim: manifest.NewInternalClaim(IDFeed.String(), cfg.Feed.Output),
			Builder: func(w io.Writer) error {
				return feed.Write(w, ch, c)
			},
		}.Post(NewMinifier(cfg.Build.Minify)))
		return nil
	}).WithDeps(IDDerive).WithReads(string(keys.Words))
}

// StepSitemap emits sitemap.xml unless disabled in config.
func StepSitemap() Step {
	return StepFunc(IDSitemap, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		if !cfg.Sitemap.Enabled {
			return nil
		}

		set := sitemap.Build(cfg.Site.URL, Get(sc, keys.Words))
		sc.Emit(manifest.Artefact{
			Claim: manifest.NewInternalClaim(IDSitemap.String(), cfg.Sitemap.Output),
			Builder: func(w io.Writer) error {
				return sitemap.Write(w, set)
			},
		}.Post(NewMinifier(cfg.Build.Minify)))
		return nil
	}).WithDeps(IDDerive).WithReads(string(keys.Words))
}

// StepStatic copies the static directory into dist, minifying what it can.
func StepStatic() Step {
	return StepFunc(IDStatic, func(ctx context.Context, sc StepContext) error {
		cfg := sc.Config()
		fsys, _ := sc.Source()

		m := NewMinifier(cfg.Build.Minify)

		root, err := cleanFSPath(cfg.Build.Static)
		if err != nil {
			return fmt.Errorf("static: %w", err)
		}

		skip, err := staticSkips(root, cfg.Build.Templates, cfg.Build.Output, cfg.Build.DataDir)
		if err != nil {
			return fmt.Errorf("static: %w", err)
		}

		files, err := fileutils.WalkFilesFS(fsys, root, func(rel string) bool {
			if skip.matches(rel) {
				return false
			}
			for _, pattern := range cfg.Build.Exclude {
				if ok, _ := doublestar.Match(pattern, rel); ok {
					return false
				}
			}
			return true
		})
		if err != nil {
			return err
		}

		for _, rel := range files {
			sc.Emit(manifest.StaticArtefact(fsys, manifest.Claim{
				Owner:  IDStatic.String(),
				Source: path.Join(root, rel),
				Target: rel,
				Canon:  rel,
			}).Post(m))
		}

		sc.Debugf("copied %d static files", len(files))
		return nil
	})
}
