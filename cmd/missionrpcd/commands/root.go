// Package commands implements the missionrpcd CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "missionrpcd",
	Short: "MissionRPC host server",
	Long: `missionrpcd hosts a MissionRPC service registry over a raw TCP
connection: clients call registered procedures by (service, procedure)
name, pass object handles across calls, and receive cooperatively
scheduled long-running results.

Use "missionrpcd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
