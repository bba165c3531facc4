// Copyright 2018 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file utilities",
	Long:  `CRM configuration file (crm.toml) utilities`,
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Scaffold a CRM configuration file",
	Long: `Create a CRM configuration file crm.toml in the current directory. Use the -c flag to specify another destination file.
All configuration parameters passed as environment variables or as flags will be set in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile := viper.GetString("ConfigFileName")
		if cfgFile == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfgFile = filepath.Join(cwd, "crm.toml")
		}
		return viper.WriteConfigAs(cfgFile)
	},
}

func init() {
	CRMCmd.AddCommand(configCmd)
	configCmd.AddCommand(scaffoldCmd)
}
