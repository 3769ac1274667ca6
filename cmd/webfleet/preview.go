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

var previewConfig struct {
	specPath  string
	stackName string
	region    string
}

func newPreviewCmd() *cobra.Command {
	var previewCommand = &cobra.Command{
		Use:   "preview",
		Short: "Show what a deployment would change",
		RunE:  preview,
	}
	flags := previewCommand.Flags()
	flags.StringVarP(&previewConfig.specPath, "spec", "f", "", "Deployment spec file")
	flags.StringVarP(&previewConfig.stackName, "stack", "s", "dev", "Stack name")
	flags.StringVarP(&previewConfig.region, "region", "r", "", "AWS region (overrides the spec)")
	return previewCommand
}

func preview(cmd *cobra.Command, args []string) error {
	osfs := afero.NewOsFs()
	spec, err := config.Load(osfs, previewConfig.specPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("error loading spec: %w", err)
	}
	if previewConfig.region != "" {
		spec.Region = previewConfig.region
	}

	ctx := logging.WithLogger(cmd.Context(), zap.L().With(zap.String("stack", previewConfig.stackName)))
	_, err = stack.RunPreview(ctx, osfs, stack.Reference{Name: previewConfig.stackName, Spec: spec})
	if err != nil {
		return fmt.Errorf("error running preview command: %w", err)
	}
	return nil
}
