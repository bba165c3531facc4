// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Deliver due reminders once",
	Long: `Run a single reminder sweep: all pending reminders whose trigger time
has passed are delivered, then the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		app, err := setupApplication()
		if err != nil {
			return err
		}
		defer app.store.Close()
		stats, err := app.engine.Sweep(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Due: %d, sent: %d, failed: %d, skipped: %d, errors: %d\n",
			stats.Due, stats.Sent, stats.Failed, stats.Skipped, stats.Errors)
		return nil
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Reminder queue utilities",
}

var forceSendCmd = &cobra.Command{
	Use:   "force-send <id>",
	Short: "Deliver a reminder now",
	Long:  `Deliver the given reminder queue entry immediately, whatever its trigger time. Entries already sent are refused.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		app, err := setupApplication()
		if err != nil {
			return err
		}
		defer app.store.Close()
		entry, err := app.service.ForceSend(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Reminder %s: %s\n", entry.ID, entry.Status)
		if entry.LastError != "" {
			fmt.Printf("Last error: %s\n", entry.LastError)
		}
		return nil
	},
}

func init() {
	CRMCmd.AddCommand(sweepCmd)
	remindersCmd.AddCommand(forceSendCmd)
	CRMCmd.AddCommand(remindersCmd)
}
