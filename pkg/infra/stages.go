package infra

import (
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"go.uber.org/zap"
)

// Stage is one step of the resource assembly. Stages declare what they
// depend on by name; the runner guarantees a dependency's resources exist
// before any dependent stage runs.
type Stage struct {
	Name      string
	DependsOn []string
	Run       func(ctx *pulumi.Context) error
}

// StageOrder resolves the execution order of the given stages. The order is
// a stable topological sort, so independent stages always run in the same
// (lexicographic) sequence. An unknown or cyclic dependency is an error.
func StageOrder(stages []Stage) ([]string, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		if _, ok := byName[s.Name]; ok {
			return nil, fmt.Errorf("duplicate stage %q", s.Name)
		}
		byName[s.Name] = s
		if err := g.AddVertex(s.Name); err != nil {
			return nil, err
		}
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.Name, dep)
			}
			if err := g.AddEdge(dep, s.Name); err != nil {
				return nil, fmt.Errorf("stage %q cannot depend on %q: %w", s.Name, dep, err)
			}
		}
	}

	return graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
}

// RunStages executes the stages in dependency order. The first failure is
// logged with its stage name and returned unchanged in the error chain; no
// later stage runs and nothing is rolled back, leaving reconciliation to the
// provisioning backend's own state tracking.
func RunStages(ctx *pulumi.Context, stages []Stage) error {
	order, err := StageOrder(stages)
	if err != nil {
		return err
	}

	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		byName[s.Name] = s
	}

	log := zap.L().Named("infra").Sugar()
	for _, name := range order {
		log.Debugf("assembling %s", name)
		if err := byName[name].Run(ctx); err != nil {
			log.Errorf("assembly stage %s failed: %s", name, err)
			return fmt.Errorf("assembly stage %s: %w", name, err)
		}
		log.Infof("assembled %s", name)
	}
	return nil
}

// fail records a resource creation failure against the provisioning log and
// re-raises it. All failures are treated uniformly regardless of cause.
func fail(resource string, err error) error {
	zap.L().Named("infra").Sugar().Errorf("failed to create %s: %s", resource, err)
	return fmt.Errorf("creating %s: %w", resource, err)
}
