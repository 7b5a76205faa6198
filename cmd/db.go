package cmd

import (
	"strconv"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/log"

	"github.com/stellar/anchor-platform-backend/db"
)

type DatabaseCommand struct{}

func (c *DatabaseCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Parent().PersistentPreRun != nil {
				cmd.Parent().PersistentPreRun(cmd.Parent(), args)
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			err := cmd.Help()
			if err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migration helpers. Migrated files are tracked in the `platform_migrations` table.",
		Run: func(cmd *cobra.Command, _ []string) {
			err := cmd.Help()
			if err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}
	migrateCmd.AddCommand(c.migrateUpCmd())
	migrateCmd.AddCommand(c.migrateDownCmd())
	cmd.AddCommand(migrateCmd)

	return cmd
}

func (c *DatabaseCommand) migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Migrates database up [count] migrations",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var count int
			if len(args) > 0 {
				var err error
				count, err = strconv.Atoi(args[0])
				if err != nil {
					log.Fatalf("Invalid migration count %q: %s", args[0], err.Error())
				}
			}
			c.runMigration(migrate.Up, count)
		},
	}
}

func (c *DatabaseCommand) migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [count]",
		Short: "Migrates database down [count] migrations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				log.Fatalf("Invalid migration count %q: %s", args[0], err.Error())
			}
			c.runMigration(migrate.Down, count)
		},
	}
}

func (c *DatabaseCommand) runMigration(dir migrate.MigrationDirection, count int) {
	numMigrationsRun, err := db.Migrate(globalOptions.DatabaseURL, dir, count)
	if err != nil {
		log.Fatalf("Error migrating database: %s", err.Error())
	}

	if numMigrationsRun == 0 {
		log.Info("No migrations applied.")
	} else {
		log.Infof("Successfully applied %d migrations.", numMigrationsRun)
	}
}
