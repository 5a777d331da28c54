/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		version, err := app.SchemaVersion(ctx)
		if err != nil {
			return errs.Wrap(err, "read schema version")
		}

		logging.Info(ctx, "init-db finished",
			slog.String("database_driver", app.Config.Database.Driver),
			slog.String("schema_version", version),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized (%s, schema version %s)\n", app.Config.Database.Driver, version); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
