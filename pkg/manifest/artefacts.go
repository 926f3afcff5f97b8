package manifest

import (
	"io"
	"io/fs"

	"github.com/olimci/guffipedia/pkg/iofs"
)

// ArtefactBuilder writes the content of one output file.
type ArtefactBuilder = iofs.WriterFunc

// PostProcessor wraps a builder, e.g. to minify its output.
type PostProcessor func(claim Claim, next ArtefactBuilder) ArtefactBuilder

// Artefact is one output file and how to produce it.
type Artefact struct {
	Claim   Claim
	Builder ArtefactBuilder
}

// Post returns a copy of a with its builder wrapped by pp. A nil pp is a no-op.
func (a Artefact) Post(pp PostProcessor) Artefact {
	if pp == nil {
		return a
	}
	a.Builder = pp(a.Claim, a.Builder)
	return a
}

// StaticArtefact copies claim.Source from fsys.
func StaticArtefact(fsys fs.FS, claim Claim) Artefact {
	return Artefact{
		Claim: claim,
		Builder: func(w io.Writer) error {
			file, err := fsys.Open(claim.Source)
			if err != nil {
				return err
			}
			defer file.Close()

			_, err = io.Copy(w, file)
			return err
		},
	}
}
