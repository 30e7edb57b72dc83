// Command settle decodes CME daily settlement reports and loads them into
// Postgres and export files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/settlement-data/internal/version"
)

var (
	// Global flags
	configPath string
	envFiles   []string
)

var rootCmd = &cobra.Command{
	Use:   "settle",
	Short: "Decode and load CME daily settlement reports",
	Long: `settle reads the exchange's fixed-width daily settlement files, decodes
every futures and option section into points, and stores the result.

Run "settle parse FILE" to inspect a single report without any
configuration.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/settle.local.yaml", "path to config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before the config (default .env)")

	rootCmd.AddCommand(parseCmd, ingestCmd, watchCmd, conventionsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
