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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/reminders"
	"github.com/hexya-erp/crm/src/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the CRM server",
	Long: `Start the CRM HTTP server and the reminder sweep worker.
The database schema is updated before the server starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return StartServer()
	},
}

// StartServer starts the CRM server and blocks until the process
// receives an interrupt or terminate signal.
func StartServer() error {
	setupLogger()
	setupDebug()
	app, err := setupApplication()
	if err != nil {
		log.Error("Unable to start server", "error", err)
		return err
	}
	defer app.store.Close()
	if err := syncDatabase(app.store); err != nil {
		return err
	}
	models.RegisterWorker(app.engine.Worker(viper.GetDuration("Reminders.SweepInterval")))
	models.RunWorkerLoop()
	defer models.StopWorkerLoop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(app.service, nil)
	address := fmt.Sprintf("%s:%s", viper.GetString("Server.Interface"), viper.GetString("Server.Port"))
	return srv.Run(ctx, address)
}

func init() {
	serverCmd.PersistentFlags().StringP("interface", "i", "", "Interface on which the server should listen. Empty string is all interfaces")
	viper.BindPFlag("Server.Interface", serverCmd.PersistentFlags().Lookup("interface"))
	serverCmd.PersistentFlags().StringP("port", "p", "8080", "Port on which the server should listen.")
	viper.BindPFlag("Server.Port", serverCmd.PersistentFlags().Lookup("port"))
	serverCmd.PersistentFlags().Duration("sweep-interval", reminders.DefaultSweepInterval, "Interval between two reminder sweeps")
	viper.BindPFlag("Reminders.SweepInterval", serverCmd.PersistentFlags().Lookup("sweep-interval"))
	CRMCmd.AddCommand(serverCmd)
}
