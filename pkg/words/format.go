package words

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/araddon/dateparse"
)

const (
	DefaultIDPrefix = "GUFF"

	// DefaultTweetTemplate renders the promotional text for a word.
	DefaultTweetTemplate = "“{{ .Word }}”: Corporate language crime no. {{ .WordID }} {{ .URL }}"

	FormattedDateLayout = "January 2, 2006"
	PubDateLayout       = time.RFC1123Z
)

var (
	ErrWordIDPrefix = errors.New("word id does not carry the expected prefix")
	ErrInvalidDate  = errors.New("invalid submission date")
)

// StripWordIDPrefix removes prefix from id. Empty ids and an empty prefix
// pass through unchanged; any other id must start with prefix.
func StripWordIDPrefix(id, prefix string) (string, error) {
	if id == "" || prefix == "" {
		return id, nil
	}
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return "", fmt.Errorf("%w %q: %q", ErrWordIDPrefix, prefix, id)
	}
	return rest, nil
}

// ParseDate parses a submission date leniently in loc. An empty string yields
// the zero time and no error.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidDate, s, err)
	}
	return t, nil
}

// FormatDate returns the long display date and the RFC 822 publication date
// for t. Both are empty for the zero time.
func FormatDate(t time.Time) (formatted, pub string) {
	if t.IsZero() {
		return "", ""
	}
	return t.Format(FormattedDateLayout), t.Format(PubDateLayout)
}

// TweetData is the data passed to the tweet template.
type TweetData struct {
	Word   string
	WordID string
	Slug   string
	URL    string
}

// ParseTweetTemplate parses text as a tweet template. Empty text selects
// DefaultTweetTemplate.
func ParseTweetTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTweetTemplate
	}
	tmpl, err := template.New("tweet").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse tweet template: %w", err)
	}
	return tmpl, nil
}

func renderTweet(tmpl *template.Template, data TweetData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render tweet: %w", err)
	}
	return sb.String(), nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// EscapeHTML escapes s with the entity set used by mustache style
// templates, which also covers backticks and equals signs.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// EncodeURI percent-encodes s, leaving URI reserved characters intact.
func EncodeURI(s string) string {
	const hex = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}
