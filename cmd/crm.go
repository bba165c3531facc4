// Copyright 2017 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log logging.Logger

// CRMCmd is the base 'crm' command of the commander
var CRMCmd = &cobra.Command{
	Use:   "crm",
	Short: "CRM activity scheduling server",
	Long: `CRM schedules calls, meetings and todos, keeps them in sync with
their calendar events and sends email reminders before they start.`,
}

func init() {
	log = logging.GetLogger("init")
	cobra.OnInitialize(initConfig)

	CRMCmd.PersistentFlags().StringP("config", "c", "", "Alternate configuration file to read. Defaults to $HOME/.crm/")
	viper.BindPFlag("ConfigFileName", CRMCmd.PersistentFlags().Lookup("config"))

	CRMCmd.PersistentFlags().StringP("log-level", "L", "info", "Log level. Should be one of 'debug', 'info', 'warn', 'error' or 'crit'")
	viper.BindPFlag("LogLevel", CRMCmd.PersistentFlags().Lookup("log-level"))
	CRMCmd.PersistentFlags().String("log-file", "", "File to which the log will be written")
	viper.BindPFlag("LogFile", CRMCmd.PersistentFlags().Lookup("log-file"))
	CRMCmd.PersistentFlags().BoolP("log-stdout", "o", false, "Enable stdout logging. Use for development or debugging.")
	viper.BindPFlag("LogStdout", CRMCmd.PersistentFlags().Lookup("log-stdout"))
	CRMCmd.PersistentFlags().Bool("debug", false, "Enable server debug mode for development")
	viper.BindPFlag("Debug", CRMCmd.PersistentFlags().Lookup("debug"))

	CRMCmd.PersistentFlags().String("db-driver", "postgres", "Database driver to use. One of 'postgres', 'mysql' or 'memory'")
	viper.BindPFlag("DB.Driver", CRMCmd.PersistentFlags().Lookup("db-driver"))
	CRMCmd.PersistentFlags().String("db-sslmode", "disable", "Database driver sslmode")
	viper.BindPFlag("DB.SSLMode", CRMCmd.PersistentFlags().Lookup("db-sslmode"))
	CRMCmd.PersistentFlags().String("db-host", "/var/run/postgresql",
		"The database host to connect to. Values that start with / are for unix domain sockets directory")
	viper.BindPFlag("DB.Host", CRMCmd.PersistentFlags().Lookup("db-host"))
	CRMCmd.PersistentFlags().String("db-port", "", "Database port. Defaults to the driver default port")
	viper.BindPFlag("DB.Port", CRMCmd.PersistentFlags().Lookup("db-port"))
	CRMCmd.PersistentFlags().String("db-user", "", "Database user. Defaults to current user")
	viper.BindPFlag("DB.User", CRMCmd.PersistentFlags().Lookup("db-user"))
	CRMCmd.PersistentFlags().String("db-password", "", "Database password. Leave empty when connecting through socket")
	viper.BindPFlag("DB.Password", CRMCmd.PersistentFlags().Lookup("db-password"))
	CRMCmd.PersistentFlags().String("db-name", "crm", "Database name")
	viper.BindPFlag("DB.Name", CRMCmd.PersistentFlags().Lookup("db-name"))

	CRMCmd.PersistentFlags().String("timezone", "Asia/Kolkata", "Timezone in which times are displayed in calendars and emails")
	viper.BindPFlag("App.Timezone", CRMCmd.PersistentFlags().Lookup("timezone"))
	CRMCmd.PersistentFlags().String("base-url", "", "Public URL of the application, used for links in reminder emails")
	viper.BindPFlag("App.BaseURL", CRMCmd.PersistentFlags().Lookup("base-url"))

	viper.SetDefault("Reminders.DeliveryTimeout", "30s")
	viper.SetDefault("Reminders.Workers", 4)
	viper.SetDefault("SMTP.Port", 587)
}

func initConfig() {
	cfgFile := viper.GetString("ConfigFileName")
	if runtime.GOOS != "windows" {
		viper.AddConfigPath("/etc/crm")
	}

	osUser, err := user.Current()
	if err != nil {
		log.Panic("Unable to retrieve current user", "error", err)
	}
	viper.AddConfigPath(filepath.Join(osUser.HomeDir, ".crm"))
	viper.AddConfigPath(".")

	viper.SetConfigName("crm")

	viper.SetEnvPrefix("CRM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	err = viper.ReadInConfig()
	if err != nil {
		log.Warn("Error while loading configuration file", "error", err)
	}
}
