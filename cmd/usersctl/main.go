package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/users-api/cmd/usersctl/ui"
	"github.com/redmonkez12/users-api/internal/config"
	"github.com/redmonkez12/users-api/internal/database"
	"github.com/redmonkez12/users-api/internal/logging"
	"github.com/redmonkez12/users-api/internal/user"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "usersctl",
		Short: "Administer the users API database",
		Long:  "Run schema migrations and bootstrap accounts for the users API. Reads the same environment and .env file as the server.",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	}

	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE:  runMigrateStatus,
	}

	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Long:  "Create a user directly in the database. Prompts for any field not given as a flag.",
		RunE:  runCreateUser,
	}

	// Flags for non-interactive mode (CI/scripting)
	createUserCmd.Flags().String("name", "", "Display name")
	createUserCmd.Flags().String("email", "", "E-mail address")
	createUserCmd.Flags().String("password", "", "Password")

	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd, createUserCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *bun.DB) error {
		if err := database.Migrate(ctx, db.DB); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		ui.PrintSuccess("Migrations applied.")
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *bun.DB) error {
		ui.PrintTitle("Migration status")
		if err := database.MigrationStatus(ctx, db.DB); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		return nil
	})
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	input := &ui.NewUser{Name: name, Email: email, Password: password}
	input.Normalize()

	// Interactive mode
	if !input.Complete() {
		fmt.Println()
		ui.PrintTitle("Create user")
		if err := ui.RunCreateUserForm(input); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	if err := input.Validate(); err != nil {
		ui.PrintError(err.Error())
		return err
	}

	return withDB(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *bun.DB) error {
		logger := logging.NewLogger(cfg.Server.IsDevelopment())
		service := user.NewService(user.NewRepository(db), user.NewBcryptHasher(cfg.Auth.BcryptCost), logger)

		created, err := service.CreateUser(ctx, input.Name, input.Email, input.Password)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}

		ui.PrintUserCreated(created)
		return nil
	})
}

// withDB loads configuration, opens the database and hands both to fn.
func withDB(ctx context.Context, fn func(context.Context, *config.Config, *bun.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError(err.Error())
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database.ConnectionString(), database.PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer db.Close()

	return fn(ctx, cfg, db)
}
