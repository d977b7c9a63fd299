package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aibandobast/bandobast/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bandobast configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the portal and writes the config file (default .bandobast.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
