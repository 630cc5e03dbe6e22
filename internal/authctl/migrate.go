package authctl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

func migrateCmd(defaults *config.Config) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return migrate(ctx, dsn, repomanager.NewPostgresRepositoryManager(), cmd)
		},
	}

	cmd.Flags().StringVarP(&dsn, "dsn", "d", defaults.DatabaseDSN, "database DSN")
	return cmd
}

func migrate(ctx context.Context, dsn string, rm repomanager.RepositoryManager, cmd *cobra.Command) error {
	db, err := openDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
