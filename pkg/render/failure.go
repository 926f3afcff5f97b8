package render

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/olimci/guffipedia/pkg/events"
)

//go:embed failure.html
var failureSource string

var failureTemplate = template.Must(template.New("failure").Funcs(template.FuncMap{
	"format": events.Format,
}).Parse(failureSource))

// FailureData describes a failed dev build.
type FailureData struct {
	Summary string
	Events  []events.Event
}

// Failure writes the page shown in place of the site after a failed dev
// build.
func Failure(w io.Writer, data FailureData) error {
	return failureTemplate.Execute(w, data)
}
