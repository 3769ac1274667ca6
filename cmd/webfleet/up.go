package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/webfleet/webfleet/pkg/config"
	"github.com/webfleet/webfleet/pkg/logging"
	"github.com/webfleet/webfleet/pkg/stack"
	"go.uber.org/zap"
)

var upConfig struct {
	specPath  string
	stackName string
	region    string
}

func newUpCmd() *cobra.Command {
	var upCommand = &cobra.Command{
		Use:   "up",
		Short: "Deploy the stack",
		RunE:  up,
	}
	flags := upCommand.Flags()
	flags.StringVarP(&upConfig.specPath, "spec", "f", "", "Deployment spec file")
	flags.StringVarP(&upConfig.stackName, "stack", "s", "dev", "Stack name")
	flags.StringVarP(&upConfig.region, "region", "r", "", "AWS region (overrides the spec)")
	return upCommand
}

func up(cmd *cobra.Command, args []string) error {
	ctx := logging.WithLogger(cmd.Context(), zap.L().With(zap.String("stack", upConfig.stackName)))
	log := logging.GetLogger(ctx).Sugar()

	osfs := afero.NewOsFs()
	spec, err := config.Load(osfs, upConfig.specPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("error loading spec: %w", err)
	}
	if upConfig.region != "" {
		spec.Region = upConfig.region
	}

	_, state, err := stack.RunUp(ctx, osfs, stack.Reference{Name: upConfig.stackName, Spec: spec})
	if err != nil {
		return fmt.Errorf("error running up command: %w", err)
	}

	for _, name := range state.OutputNames() {
		out := state.Outputs[name]
		if out.Secret {
			log.Infof("%s: [secret]", name)
			continue
		}
		log.Infof("%s: %v", name, out.Value)
	}
	return nil
}
