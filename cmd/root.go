package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "repowatch",
		Short: "GitHub repository activity monitor",
		Long: `A CLI tool that monitors GitHub repositories for issue and pull
request activity, evaluates the counts against configured thresholds,
and alerts a Telegram channel on every breach.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add status flags to root command so `repowatch` and `repowatch status`
	// work identically
	addStatusFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdFetch(opts))
	rootCmd.AddCommand(NewCmdCheck(opts))
	rootCmd.AddCommand(NewCmdRun(opts))
	rootCmd.AddCommand(NewCmdStatus(opts))
	rootCmd.AddCommand(NewCmdWatch(opts))
	rootCmd.AddCommand(NewCmdStore())
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdRateLimit())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
