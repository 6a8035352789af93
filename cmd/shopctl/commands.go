package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/upb/webshop/config"
	"github.com/upb/webshop/internal/observability"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories/postgres"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/services/users"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const commandTimeout = 30 * time.Second

// env carries what commands need from the outside world
type env struct {
	openDB     func(cfg config.DatabaseConfig, logger *zap.Logger) (*postgres.DB, error)
	newLogger  func(level string) (*zap.Logger, error)
	bcryptCost int
}

func defaultEnv() env {
	return env{
		openDB: postgres.NewDB,
		newLogger: func(level string) (*zap.Logger, error) {
			return observability.NewLogger(level, "console")
		},
		bcryptCost: bcrypt.DefaultCost,
	}
}

func newRootCmd(e env) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Administrative tasks for the webshop database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	withDB := func(cmd *cobra.Command, fn func(ctx context.Context, db *postgres.DB, logger *zap.Logger) error) error {
		logger, err := e.newLogger(logLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := e.openDB(config.NewDatabaseConfig(), logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		return fn(ctx, db, logger)
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *postgres.DB, _ *zap.Logger) error {
				if err := db.InitSchema(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}

	var (
		req      users.CreateUserRequest
		rolesArg string
	)
	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with the given roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := parseRoles(rolesArg)
			if err != nil {
				return err
			}
			if err := utils.ValidateStruct(req); err != nil {
				return fmt.Errorf("invalid account: %s", describeValidation(err))
			}

			return withDB(cmd, func(ctx context.Context, db *postgres.DB, logger *zap.Logger) error {
				svc := users.NewService(postgres.NewUserRepository(db, logger), auth.NewBcryptVerifier(e.bcryptCost), logger)

				user, err := svc.Create(ctx, req, roles...)
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) roles=%s\n", user.Email, user.ID, strings.Join(user.Roles, ","))
				return nil
			})
		},
	}
	createUserCmd.Flags().StringVar(&req.Name, "name", "", "First name")
	createUserCmd.Flags().StringVar(&req.Surname, "surname", "", "Last name")
	createUserCmd.Flags().StringVar(&req.Email, "email", "", "E-mail address, used as login")
	createUserCmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 8 characters, at most 72 bytes)")
	createUserCmd.Flags().StringVar(&rolesArg, "roles", models.RoleUser, "Comma separated roles: USER,ADMIN")

	var grantEmail, grantRoles string
	grantCmd := &cobra.Command{
		Use:   "set-roles",
		Short: "Replace the roles of an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if grantEmail == "" {
				return fmt.Errorf("--email is required")
			}
			roles, err := parseRoles(grantRoles)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *postgres.DB, logger *zap.Logger) error {
				svc := users.NewService(postgres.NewUserRepository(db, logger), auth.NewBcryptVerifier(e.bcryptCost), logger)
				if err := svc.SetRoles(ctx, grantEmail, roles); err != nil {
					return fmt.Errorf("set roles: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s roles=%s\n", grantEmail, strings.Join(roles, ","))
				return nil
			})
		},
	}
	grantCmd.Flags().StringVar(&grantEmail, "email", "", "E-mail address of the account")
	grantCmd.Flags().StringVar(&grantRoles, "roles", "", "Comma separated roles: USER,ADMIN")

	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.NewBcryptVerifier(e.bcryptCost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	root.AddCommand(migrateCmd, createUserCmd, grantCmd, hashCmd)
	return root
}

// parseRoles splits a comma separated role list and rejects unknown roles
func parseRoles(raw string) ([]string, error) {
	var roles []string
	for _, part := range strings.Split(raw, ",") {
		role := strings.ToUpper(strings.TrimSpace(part))
		if role == "" {
			continue
		}
		if role != models.RoleUser && role != models.RoleAdmin {
			return nil, fmt.Errorf("unknown role %q", part)
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}
	return roles, nil
}

// describeValidation flattens field errors into one line in field order
func describeValidation(err error) string {
	fields := utils.GetValidationFields(err)
	if len(fields) == 0 {
		return err.Error()
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, fields[name])
	}
	return strings.Join(messages, "; ")
}
