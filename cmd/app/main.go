// File: cmd/app/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"physical-ai-textbook/internal/infra/metrics"
)

// Set via -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

type rootFlags struct {
	configPath string
	dev        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "textbook",
		Short: "Physical AI textbook client",
		Long: "textbook talks to the Physical AI & Robotics textbook backend: sign in,\n" +
			"chat with the AI tutor, and personalize or translate chapter content.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "textbook.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&flags.dev, "dev", false, "developer mode (verbose logs, dev JWT secret)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSignupCmd(flags))
	cmd.AddCommand(newLoginCmd(flags))
	cmd.AddCommand(newLogoutCmd(flags))
	cmd.AddCommand(newWhoamiCmd(flags))
	cmd.AddCommand(newChatCmd(flags))
	cmd.AddCommand(newPersonalizeCmd(flags))
	cmd.AddCommand(newTranslateCmd(flags))
	cmd.AddCommand(newDevServerCmd(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			metrics.SetBuildInfo(Version, Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "textbook %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
