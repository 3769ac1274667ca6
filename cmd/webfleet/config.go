package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/webfleet/webfleet/pkg/config"
	"gopkg.in/yaml.v3"
)

var configCfg struct {
	specPath string
}

func newConfigCmd() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   "config",
		Short: "Print the effective deployment spec",
		RunE:  printConfig,
	}
	configCommand.Flags().StringVarP(&configCfg.specPath, "spec", "f", "", "Deployment spec file")
	return configCommand
}

func printConfig(cmd *cobra.Command, args []string) error {
	spec, err := config.Load(afero.NewOsFs(), configCfg.specPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("error loading spec: %w", err)
	}

	// credentials stay out of terminal output
	spec.DbPassword = "[secret]"

	out, err := yaml.Marshal(spec)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
