package words

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/olimci/guffipedia/pkg/events"
)

const DefaultSiteURL = "https://ig.ft.com/sites/guffipedia/"

var ErrEmptyWord = errors.New("empty word")

// Options controls how rows are turned into records.
type Options struct {
	// IDPrefix is stripped from every word id. Empty disables stripping.
	IDPrefix string
	// Location is used for dates that carry no zone. Defaults to UTC.
	Location *time.Location
	// SiteURL is the public root the word pages live under.
	SiteURL string
	// Tweet renders the promotional text. Defaults to DefaultTweetTemplate.
	Tweet *template.Template
	// Events receives non-fatal diagnostics.
	Events events.Handler
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		IDPrefix: DefaultIDPrefix,
		Location: time.UTC,
		SiteURL:  DefaultSiteURL,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SiteURL == "" {
		o.SiteURL = DefaultSiteURL
	}
	if o.Tweet == nil {
		tmpl, err := ParseTweetTemplate("")
		if err != nil {
			return o, err
		}
		o.Tweet = tmpl
	}
	if o.Events == nil {
		o.Events = events.NoopHandler{}
	}
	return o, nil
}

// WordURL returns the public page URL for slug under site.
func WordURL(site, slug string) string {
	return strings.TrimSuffix(site, "/") + "/" + slug
}

// Derive builds the linked word collection from rows. Rows are not modified.
// The returned collection is ordered by slug.
func Derive(rows []Row, opts Options) (*Collection, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]int, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Word) == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyWord)
		}
		slug := Slugify(row.Word)
		if slug == "" {
			return nil, fmt.Errorf("row %d: %w: %q has no slug", i, ErrEmptyWord, row.Word)
		}
		if j, ok := bySlug[slug]; ok {
			return nil, fmt.Errorf("%w %q: %q and %q", ErrDuplicateSlug, slug, rows[j].Word, row.Word)
		}
		bySlug[slug] = i
	}

	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)

	c := newCollection(len(slugs))
	for _, slug := range slugs {
		r, err := newRecord(slug, rows[bySlug[slug]], opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slug, err)
		}
		if err := c.add(r); err != nil {
			return nil, err
		}
	}

	for i, slug := range slugs {
		r := c.records[slug]
		prev := slugs[(i-1+len(slugs))%len(slugs)]
		next := slugs[(i+1)%len(slugs)]
		r.PreviousWord = c.records[prev].Ref()
		r.NextWord = c.records[next].Ref()
		r.RelatedWords = resolveRelated(c, r, rows[bySlug[slug]].RelatedWords, opts.Events)
	}

	return c, nil
}

func newRecord(slug string, row Row, opts Options) (*Record, error) {
	id, err := StripWordIDPrefix(strings.TrimSpace(string(row.WordID)), opts.IDPrefix)
	if err != nil {
		return nil, err
	}

	r := &Record{
		Word:           row.Word,
		SubmissionDate: row.SubmissionDate,
		WordID:         id,
		Definition:     row.Definition,
		UsageExample:   row.UsageExample,
		LucyCommentary: row.LucyCommentary,
		Perpetrator:    row.Perpetrator,
		UsageSource:    row.UsageSource,
		SourceURL:      row.SourceURL,
		CommentURL:     row.CommentURL,
		RelatedWords:   []Ref{},

		Slug:                slug,
		ShowPerpetratorData: row.Perpetrator != "" || row.UsageSource != "",
	}

	if strings.TrimSpace(row.SubmissionDate) == "" {
		opts.Events.Handle(events.Event{
			Level:   events.Warn,
			Source:  slug,
			Message: "missing submission date",
		})
	} else {
		t, err := ParseDate(row.SubmissionDate, opts.Location)
		if err != nil {
			return nil, err
		}
		r.Submitted = t
		r.FormattedDate, r.PubDate = FormatDate(t)
	}

	tweet, err := renderTweet(opts.Tweet, TweetData{
		Word:   r.Word,
		WordID: r.WordID,
		Slug:   slug,
		URL:    WordURL(opts.SiteURL, slug),
	})
	if err != nil {
		return nil, err
	}
	r.TweetText = tweet
	r.TweetTextRSS = EscapeHTML(tweet)
	r.TweetTextURI = EncodeURI(tweet)

	return r, nil
}

func resolveRelated(c *Collection, r *Record, names []string, handler events.Handler) []Ref {
	out := make([]Ref, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		related, ok := c.Get(Slugify(name))
		if !ok {
			handler.Handle(events.Event{
				Level:   events.Warn,
				Source:  r.Slug,
				Message: fmt.Sprintf("related word %q not found", name),
			})
			continue
		}
		out = append(out, related.Ref())
	}
	return out
}
