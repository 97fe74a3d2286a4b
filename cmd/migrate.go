package main

import (
	"github.com/spf13/cobra"

	"owlistic-notes/blocknotes/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date and exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Setup(cfg)
		if err != nil {
			return err
		}
		db.Close()
		return nil
	},
}
