package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	clicommon "github.com/webfleet/webfleet/pkg/cli_common"
)

var commonCfg clicommon.CommonConfig

func cli() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rootCmd = &cobra.Command{
		Use:   "webfleet",
		Short: "Provision a complete web application stack on AWS",
	}
	clicommon.SetupRoot(rootCmd, &commonCfg)

	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(cli())
}
