// Package feed writes the words collection as an RSS 2.0 document with a
// custom namespace carrying the full word record.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/olimci/guffipedia/pkg/words"
)

const (
	atomNS = "http://www.w3.org/2005/Atom"

	DefaultTitle       = "Guffipedia"
	DefaultLink        = "https://ig.ft.com/sites/guffipedia/"
	DefaultDescription = "Lucy Kellaway’s dictionary of business jargon and corporate nonsense"
	DefaultPrefix      = "guff"
	DefaultOutput      = "rss.xml"
)

// Channel describes the feed itself.
type Channel struct {
	Title       string
	Link        string
	Description string
	// Prefix names the custom namespace; its URI is Link.
	Prefix string
	// Self is the public path of the feed, relative to Link.
	Self string
}

func DefaultChannel() Channel {
	return Channel{
		Title:       DefaultTitle,
		Link:        DefaultLink,
		Description: DefaultDescription,
		Prefix:      DefaultPrefix,
		Self:        DefaultOutput,
	}
}

func (ch Channel) link() string {
	if strings.HasSuffix(ch.Link, "/") {
		return ch.Link
	}
	return ch.Link + "/"
}

// Write encodes c as RSS to w, newest submission first.
func Write(w io.Writer, ch Channel, c *words.Collection) error {
	if ch.Prefix == "" {
		ch.Prefix = DefaultPrefix
	}
	link := ch.link()

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	x := &writer{enc: xml.NewEncoder(w), prefix: ch.Prefix}
	x.start("rss",
		attr("version", "2.0"),
		attr("xmlns:atom", atomNS),
		attr("xmlns:"+ch.Prefix, link),
	)
	x.start("channel")
	x.text("title", ch.Title)
	x.text("link", link)
	x.text("description", ch.Description)
	x.start("atom:link",
		attr("href", link+strings.TrimPrefix(ch.Self, "/")),
		attr("rel", "self"),
		attr("type", "application/rss+xml"),
	)
	x.end("atom:link")

	for _, r := range c.ByDate() {
		x.item(link, r)
	}

	x.end("channel")
	x.end("rss")

	if x.err != nil {
		return fmt.Errorf("write feed: %w", x.err)
	}
	if err := x.enc.Flush(); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}

func (x *writer) item(link string, r *words.Record) {
	page := link + r.Slug + "/"

	x.start("item")
	x.text("title", r.Word)
	x.text("description", r.TweetText)
	x.text("link", page)
	x.text("guid", page)
	x.text("pubDate", r.PubDate)
	x.ns("formatteddate", r.FormattedDate)
	x.ns("slug", r.Slug)
	x.ns("wordid", r.WordID)
	x.ns("submissiondate", r.SubmissionDate)
	x.optional("definition", r.Definition)
	x.optional("usageexample", r.UsageExample)
	x.optional("lucycommentary", r.LucyCommentary)
	x.ns("commenturl", r.CommentURL)
	x.optional("perpetrator", r.Perpetrator)
	x.optional("usagesource", r.UsageSource)
	x.optional("sourceurl", r.SourceURL)
	x.ns("tweet", r.TweetText)
	x.ref("previousword", r.PreviousWord)
	x.ref("nextword", r.NextWord)
	if len(r.RelatedWords) > 0 {
		x.start(x.qualify("relatedwords"))
		for _, related := range r.RelatedWords {
			x.ref("relatedword", related)
		}
		x.end(x.qualify("relatedwords"))
	}
	x.end("item")
}
