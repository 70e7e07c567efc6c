package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docflow/internal/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "docflow",
		Short: "Docflow - Document approval workflow engine",
		Long: `Docflow runs multi-step approval workflows for document templates.
Definitions describe an ordered sequence of approval steps; instances advance
through them as approvers decide, with any rejection terminating the run.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.docflow/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(workflowImportCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.docflow")
			viper.SetConfigType("yaml")
			viper.SetConfigName("config")
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DOCFLOW")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Printf("Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func initLogging() {
	logging.Initialize(viper.GetBool("debug"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
