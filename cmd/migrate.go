package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ordergw/internal/config"
	"ordergw/internal/db"
	"ordergw/internal/store/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database tables (dev: DROP & CREATE for MySQL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		switch cfg.Storage.Driver {
		case "sqlite":
			sqlDB, err := db.NewSQLiteConnection(cfg.SQLite.Path)
			if err != nil {
				return fmt.Errorf("sqlite open: %w", err)
			}
			defer sqlDB.Close()
			if _, err := sqlDB.Exec(sqlstore.SQLiteSchema); err != nil {
				return fmt.Errorf("exec schema: %w", err)
			}
		case "mysql":
			sqlDB, err := db.NewMySQLConnection(cfg.MySQL)
			if err != nil {
				return fmt.Errorf("mysql connect: %w", err)
			}
			defer sqlDB.Close()

			sqlPath := filepath.Join("migrations", "001_init.sql")
			sqlBytes, err := os.ReadFile(sqlPath)
			if err != nil {
				return fmt.Errorf("read migration file %s: %w", sqlPath, err)
			}

			if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
				return fmt.Errorf("disable fk checks: %w", err)
			}
			if _, err := sqlDB.Exec(string(sqlBytes)); err != nil {
				_, _ = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")
				return fmt.Errorf("exec migration: %w", err)
			}
			if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
				return fmt.Errorf("enable fk checks: %w", err)
			}
		default:
			return fmt.Errorf("storage driver %q needs no migration", cfg.Storage.Driver)
		}

		fmt.Println(">> Migration complete")
		return nil
	},
}
