package build

import (
	"io"
	"path/filepath"

	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/render"
	"github.com/olimci/guffipedia/pkg/steps"
	"github.com/olimci/guffipedia/pkg/utils/fileutils"
)

// writeFailure replaces the index page in dist with a page listing what went
// wrong. Other files are left alone so the site keeps working once fixed.
func writeFailure(dist string, summary *events.Summary) error {
	data := render.FailureData{
		Summary: summary.Counts(),
		Events:  summary.Errors,
	}
	for _, event := range summary.Full {
		if event.Level == events.Warn {
			data.Events = append(data.Events, event)
		}
	}

	return fileutils.AtomicWrite(filepath.Join(dist, steps.IndexFile), func(w io.Writer) error {
		return render.Failure(w, data)
	})
}
