package words

import "time"

// Ref points at another word by slug, carrying its display text.
type Ref struct {
	Slug string `json:"slug"`
	Word string `json:"word"`
}

// Record is one dictionary entry with its derived cross references and
// formatted fields. Records are not modified after Derive returns.
type Record struct {
	Word           string `json:"word"`
	RelatedWords   []Ref  `json:"relatedwords"`
	SubmissionDate string `json:"submissiondate"`
	WordID         string `json:"wordid"`
	Definition     string `json:"definition,omitempty"`
	UsageExample   string `json:"usageexample,omitempty"`
	LucyCommentary string `json:"lucycommentary,omitempty"`
	Perpetrator    string `json:"perpetrator,omitempty"`
	UsageSource    string `json:"usagesource,omitempty"`
	SourceURL      string `json:"sourceurl,omitempty"`
	CommentURL     string `json:"commenturl,omitempty"`

	Slug                string `json:"slug"`
	PreviousWord        Ref    `json:"previousWord"`
	NextWord            Ref    `json:"nextWord"`
	ShowPerpetratorData bool   `json:"showPerpetratorData"`
	FormattedDate       string `json:"formatteddate"`
	PubDate             string `json:"pubdate"`
	TweetTextRSS        string `json:"tweettextrss"`
	TweetTextURI        string `json:"tweettexturi"`

	// TweetText is the unescaped promotional text.
	TweetText string `json:"-"`
	// Submitted is the parsed submission date; zero when the row had none.
	Submitted time.Time `json:"-"`
}

// Ref returns a pointer to r.
func (r *Record) Ref() Ref {
	return Ref{Slug: r.Slug, Word: r.Word}
}
