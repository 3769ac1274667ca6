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

var downConfig struct {
	specPath  string
	stackName string
	region    string
}

func newDownCmd() *cobra.Command {
	downCommand := &cobra.Command{
		Use:   "down",
		Short: "Destroy the stack",
		RunE:  down,
	}
	flags := downCommand.Flags()
	flags.StringVarP(&downConfig.specPath, "spec", "f", "", "Deployment spec file")
	flags.StringVarP(&downConfig.stackName, "stack", "s", "dev", "Stack name")
	flags.StringVarP(&downConfig.region, "region", "r", "", "AWS region (overrides the spec)")
	return downCommand
}

func down(cmd *cobra.Command, args []string) error {
	osfs := afero.NewOsFs()
	spec, err := config.Load(osfs, downConfig.specPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("error loading spec: %w", err)
	}
	if downConfig.region != "" {
		spec.Region = downConfig.region
	}

	ctx := logging.WithLogger(cmd.Context(), zap.L().With(zap.String("stack", downConfig.stackName)))
	if err := stack.RunDown(ctx, osfs, stack.Reference{Name: downConfig.stackName, Spec: spec}); err != nil {
		return fmt.Errorf("error running down command: %w", err)
	}
	return nil
}
