package keys

import (
	"html/template"

	"github.com/olimci/guffipedia/pkg/manifest"
	"github.com/olimci/guffipedia/pkg/words"
)

const (
	Rows      = manifest.K[[]words.Row]("rows")
	Words     = manifest.K[*words.Collection]("words")
	Home      = manifest.K[*words.Collection]("home")
	Templates = manifest.K[*template.Template]("templates")
	// DataFiles are written next to the sources once the build succeeds.
	DataFiles = manifest.K[[]manifest.Artefact]("datafiles")
)
