package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-alerts/internal/di"
	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/storage"
)

var (
	dbPath      string
	subjectType string
	subjectID   string
	verbose     bool

	db        *bun.DB
	container *di.Container
)

func Execute() error {
	root := &cobra.Command{
		Use:   "alertprefs",
		Short: "Inspect and manage alert preferences",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
			if err != nil {
				return err
			}
			db = bun.NewDB(sqldb, sqlitedialect.New())

			ctx := cmd.Context()
			for _, model := range []any{
				(*domain.AlertPreference)(nil),
				(*domain.DndSchedule)(nil),
			} {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("create table: %w", err)
				}
			}

			var lgr logger.Logger = &logger.Nop{}
			if verbose {
				lgr = logger.New()
			}
			container, err = di.New(di.Options{
				Storage: storage.NewBunProviders(db),
				Logger:  lgr,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "alerts.db", "sqlite database path")
	root.PersistentFlags().StringVar(&subjectType, "subject-type", "user", "subject type (user, tenant, device)")
	root.PersistentFlags().StringVarP(&subjectID, "subject", "s", "", "subject identifier")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log service activity")

	root.AddCommand(getCmd(), setCmd(), dndCmd(), scheduleCmd(), evaluateCmd())
	return root.Execute()
}

func requireSubject() error {
	if subjectID == "" {
		return fmt.Errorf("alertprefs: --subject is required")
	}
	return nil
}
