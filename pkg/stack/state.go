package stack

import (
	"context"
	"sort"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
)

// State is a snapshot of a deployed stack: the backend state version and the
// published outputs (vpc_id, subnet_ids, bucket_name, ...).
type State struct {
	Version int
	Outputs map[string]Output
}

type Output struct {
	Value  any
	Secret bool
}

func GetState(ctx context.Context, stack auto.Stack) (State, error) {
	raw, err := stack.Export(ctx)
	if err != nil {
		return State{}, err
	}

	outputs, err := stack.Outputs(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		Version: raw.Version,
		Outputs: FromOutputMap(outputs),
	}, nil
}

func FromOutputMap(outputs auto.OutputMap) map[string]Output {
	out := make(map[string]Output, len(outputs))
	for key, value := range outputs {
		out[key] = Output{Value: value.Value, Secret: value.Secret}
	}
	return out
}

// OutputNames returns the output keys in stable order for display.
func (s State) OutputNames() []string {
	names := make([]string, 0, len(s.Outputs))
	for name := range s.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
