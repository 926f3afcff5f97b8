package words

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Row is one raw spreadsheet row, as served by the data endpoint.
type Row struct {
	Word           string   `json:"word"`
	RelatedWords   NameList `json:"relatedwords"`
	SubmissionDate string   `json:"submissiondate"`
	WordID         Text     `json:"wordid"`
	Definition     string   `json:"definition"`
	UsageExample   string   `json:"usageexample"`
	LucyCommentary string   `json:"lucycommentary"`
	Perpetrator    string   `json:"perpetrator"`
	UsageSource    string   `json:"usagesource"`
	SourceURL      string   `json:"sourceurl"`
	CommentURL     string   `json:"commenturl"`
}

// Text is a string that also accepts JSON numbers and null.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*t = Text(n.String())
		return nil
	}
}

// NameList is a list of related word names. The source sometimes sends a
// single comma separated string, or null, instead of an array.
type NameList []string

func (l *NameList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var out NameList
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	default:
		var names []string
		if err := json.Unmarshal(b, &names); err != nil {
			return fmt.Errorf("relatedwords: %w", err)
		}
		*l = names
		return nil
	}
}

// DecodeRows decodes a JSON array of rows.
func DecodeRows(b []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
