package build

import (
	"fmt"

	"github.com/olimci/guffipedia/pkg/steps"
	"github.com/olimci/guffipedia/pkg/utils/set"
)

// dag is an internal struct representing a directed acyclic graph
type dag struct {
	m   map[steps.StepID]steps.Step
	adj map[steps.StepID][]steps.StepID
	deg map[steps.StepID]int
}

// newDAG constructs a DAG from a slice of steps.
func newDAG(list []steps.Step) (*dag, error) {
	d := &dag{
		m:   make(map[steps.StepID]steps.Step),
		adj: make(map[steps.StepID][]steps.StepID),
		deg: make(map[steps.StepID]int),
	}

	for _, step := range list {
		if _, ex := d.m[step.ID]; ex {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.ID)
		}
		d.m[step.ID] = step
		d.deg[step.ID] = 0
	}

	for _, step := range list {
		seen := set.New[steps.StepID]()
		for _, dep := range step.Deps {
			if step.ID == dep {
				return nil, fmt.Errorf("%w: %s", ErrSelfDependency, step.ID)
			}
			if _, ex := d.m[dep]; !ex {
				return nil, fmt.Errorf("%w: %s needs %s", ErrUnresolvedDependency, step.ID, dep)
			}
			if seen.HasAdd(dep) {
				continue
			}

			d.deg[step.ID]++
			d.adj[dep] = append(d.adj[dep], step.ID)
		}
	}

	return d, nil
}

// ready returns the steps with no unmet dependencies.
func (d *dag) ready() []steps.StepID {
	var out []steps.StepID
	for id, n := range d.deg {
		if n == 0 {
			out = append(out, id)
		}
	}
	return out
}

// stuck returns the steps that never became ready.
func (d *dag) stuck() []string {
	var out []string
	for id, n := range d.deg {
		if n != 0 {
			out = append(out, id.String())
		}
	}
	return out
}
