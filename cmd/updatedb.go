// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"

	"github.com/hexya-erp/crm/src/models"
	"github.com/spf13/cobra"
)

var updateDBCmd = &cobra.Command{
	Use:   "updatedb",
	Short: "Update the database schema",
	Long:  `Create the missing tables, columns and indexes of the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return UpdateDB()
	},
}

// UpdateDB updates the database schema
func UpdateDB() error {
	setupLogger()
	store, err := connectToDB()
	if err != nil {
		log.Error("Unable to connect to database", "error", err)
		return err
	}
	defer store.Close()
	if err := syncDatabase(store); err != nil {
		return err
	}
	log.Info("Database updated successfully")
	return nil
}

// syncDatabase updates the schema of SQL stores
func syncDatabase(store models.Store) error {
	sqlStore, ok := store.(*models.SQLStore)
	if !ok {
		return nil
	}
	if err := sqlStore.SyncDatabase(context.Background()); err != nil {
		log.Error("Unable to update database", "error", err)
		return err
	}
	return nil
}

func init() {
	CRMCmd.AddCommand(updateDBCmd)
}
