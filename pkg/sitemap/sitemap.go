// Package sitemap writes a sitemaps.org URL set for the site.
package sitemap

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/olimci/guffipedia/pkg/words"
)

const (
	DefaultOutput = "sitemap.xml"

	lastModLayout = "2006-01-02"
)

type Item struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	Items   []Item   `xml:"url"`
}

// Build lists the home page and every word page, in slug order. The home page is last
// modified by the newest submission; word pages by their own.
func Build(site string, c *words.Collection) URLSet {
	items := make([]Item, 0, c.Len()+1)

	var newest time.Time
	for _, r := range c.Records() {
		if r.Submitted.After(newest) {
			newest = r.Submitted
		}
		items = append(items, Item{
			Loc:        words.WordURL(site, r.Slug) + "/",
			LastMod:    lastMod(r.Submitted),
			ChangeFreq: "monthly",
			Priority:   "0.80",
		})
	}

	home := Item{
		Loc:        site,
		LastMod:    lastMod(newest),
		ChangeFreq: "daily",
		Priority:   "1.00",
	}

	return URLSet{Items: append([]Item{home}, items...)}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(lastModLayout)
}

func Write(w io.Writer, set URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Close()
}
