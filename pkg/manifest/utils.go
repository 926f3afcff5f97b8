package manifest

import (
	"path"
	"strings"

	"github.com/olimci/guffipedia/pkg/utils/set"
)

// isRel checks if a slash path climbs out of its root
func isRel(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}

// manifestDirs creates a set of directories from the manifest's claims
func manifestDirs(m map[string]ArtefactBuilder) *set.Set[string] {
	out := set.New[string]()
	for claim := range m {
		claim = path.Clean(claim)
		if path.IsAbs(claim) || isRel(claim) {
			continue
		}

		dir := path.Dir(claim)
		for dir != "." && dir != "/" {
			out.Add(dir)
			dir = path.Dir(dir)
		}
	}

	out.Add(".")

	return out
}

// makeArtefacts converts a list of artefacts into a map, and a collection of conflicts.
func makeArtefacts(as []Artefact) (artefacts map[string]ArtefactBuilder, conflicts map[string][]Claim) {
	artefacts = make(map[string]ArtefactBuilder)
	conflicts = make(map[string][]Claim)

	for _, a := range as {
		conflicts[a.Claim.Target] = append(conflicts[a.Claim.Target], a.Claim)
		artefacts[a.Claim.Target] = a.Builder
	}
	for d, cs := range conflicts {
		if len(cs) <= 1 {
			delete(conflicts, d)
		}
	}

	return artefacts, conflicts
}
