package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/config"
	"github.com/flowtrack/flowtrack-api/internal/database"
	"github.com/flowtrack/flowtrack-api/internal/logger"
	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/services"
)

// dbOpener returns a connected database for a command to work on.
type dbOpener func(ctx context.Context) (*gorm.DB, error)

func openDatabase(ctx context.Context) (*gorm.DB, error) {
	_ = godotenv.Load()
	cfg, err := config.LoadDB(ctx, envconfig.OsLookuper())
	if err != nil {
		return nil, err
	}
	return database.Connect(*cfg)
}

func newRootCmd(open dbOpener) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Operator tooling for the FlowTrack API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logger.Options{Level: logLevel, Pretty: true, Output: cmd.ErrOrStderr()})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	root.AddCommand(migrateCmd(open))
	root.AddCommand(userCmd(open))
	return root
}

func migrateCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func userCmd(open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd(open))
	cmd.AddCommand(userListCmd(open))
	return cmd
}

func userCreateCmd(open dbOpener) *cobra.Command {
	var input services.RegisterInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with any role, including the first ADMIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd.Context())
			if err != nil {
				return err
			}
			store := repository.NewStore(db)
			user, err := services.NewUserService(store.Users()).Provision(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&input.Role, "role", string(models.RoleEmployee), "ADMIN, MANAGER or EMPLOYEE")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userListCmd(open dbOpener) *cobra.Command {
	var (
		role   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd.Context())
			if err != nil {
				return err
			}
			users := repository.NewStore(db).Users()

			var list []models.User
			if role != "" {
				parsed, err := models.ParseRole(role)
				if err != nil {
					return err
				}
				list, err = users.ListByRole(cmd.Context(), parsed)
				if err != nil {
					return err
				}
			} else {
				list, err = users.List(cmd.Context())
				if err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Email", "Name", "Role", "Active"})
			for _, u := range list {
				tw.AppendRow(table.Row{u.ID, u.Email, u.FullName, u.Role, u.IsActive})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
