package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juristack/juristack/internal/infrastructure/database/postgres"
)

var (
	migrateSteps int
	forceVersion int
)

// NewMigrateCmd creates the migrate command group.  Unlike the other
// commands, these talk straight to PostgreSQL using the loaded config.
func NewMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(dbURL, path); err != nil {
				return err
			}
			PrintSuccess(cmd, "schema is up to date")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll the schema back by a number of steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(dbURL, path, migrateSteps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d step(s)", migrateSteps))
			return nil
		},
	}
	downCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(dbURL, path)
			if err != nil {
				return err
			}
			if version == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			state := "clean"
			if dirty {
				state = "DIRTY"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", version, state)
			return nil
		},
	}

	forceCmd := &cobra.Command{
		Use:   "force",
		Short: "Force the recorded schema version without running migrations",
		Long:  "force recovers from a dirty schema state. It rewrites the version record only; use with care.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			if err := postgres.ForceMigrationVersion(dbURL, path, forceVersion); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("schema version forced to %d", forceVersion))
			return nil
		},
	}
	forceCmd.Flags().IntVar(&forceVersion, "version", 0, "schema version to record (required)")
	forceCmd.MarkFlagRequired("version") //nolint:errcheck

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd, forceCmd)
	return migrateCmd
}

// migrationTarget resolves the database URL and migration source from the
// loaded configuration.
func migrationTarget(cmd *cobra.Command) (dbURL, migrationsPath string, err error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", "", err
	}
	dbCfg := &cliCtx.Config.Database

	path := dbCfg.MigrationPath
	if path == "" {
		path = "migrations"
	}
	return postgres.BuildMigrateDSN(dbCfg), "file://" + path, nil
}
