package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/escalation"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs; it is built lazily so --help works without a database.
// actor is the admin account the changes are recorded under.
type env struct {
	store    storage.Storage
	recorder *audit.Recorder
	actor    *models.User
	logger   *logrus.Logger
	out      io.Writer
}

func connect(ctx context.Context, as string) (*env, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if as == "" {
		as = cfg.Escalation.ActorEmail
	}
	if as == "" {
		return nil, fmt.Errorf("no acting admin: pass --as or set ESCALATION_ACTOR_EMAIL")
	}
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	// No Redis for the admin CLI
	store := storage.NewStorageService(db, nil, logger)
	actor, err := escalation.AccountActor(store, as)(ctx)
	if err != nil {
		return nil, err
	}
	return &env{
		store:    store,
		recorder: audit.NewRecorder(store, logger),
		actor:    actor,
		logger:   logger,
		out:      os.Stdout,
	}, nil
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance commands for the complaint desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("as", "", "email of the admin the changes are recorded under (default $ESCALATION_ACTOR_EMAIL)")
	cmd.AddCommand(newEscalateCommand())
	cmd.AddCommand(newSetRoleCommand())
	cmd.AddCommand(newActiveCommand("activate", true))
	cmd.AddCommand(newActiveCommand("deactivate", false))
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func connectFor(cmd *cobra.Command) (*env, error) {
	as, err := cmd.Flags().GetString("as")
	if err != nil {
		return nil, err
	}
	return connect(commandContext(cmd), as)
}

func newEscalateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "escalate",
		Short: "Promote stale open complaints to Critical now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connectFor(cmd)
			if err != nil {
				return err
			}
			return escalate(commandContext(cmd), e)
		},
	}
}

func newSetRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Change the role of an account (user or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connectFor(cmd)
			if err != nil {
				return err
			}
			return setRole(commandContext(cmd), e, args[0], models.Role(args[1]))
		},
	}
}

func newActiveCommand(name string, active bool) *cobra.Command {
	short := "Re-enable a deactivated account"
	if !active {
		short = "Block an account from logging in"
	}
	return &cobra.Command{
		Use:   name + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connectFor(cmd)
			if err != nil {
				return err
			}
			return setActive(commandContext(cmd), e, args[0], active)
		},
	}
}

func escalate(ctx context.Context, e *env) error {
	policy := escalation.NewPolicy(e.store, e.recorder, notify.Nop{}, e.logger)
	res, err := policy.Sweep(ctx, e.actor, escalation.SourceCLI)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Escalated %d complaint(s)\n", res.Count)
	for _, id := range res.IDs {
		fmt.Fprintf(e.out, "  %s\n", id)
	}
	return nil
}

func findUser(ctx context.Context, e *env, email string) (*models.User, error) {
	u, err := e.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, fmt.Errorf("no account with email %s", email)
		}
		return nil, err
	}
	return u, nil
}

func setRole(ctx context.Context, e *env, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q, must be user or admin", role)
	}
	u, err := findUser(ctx, e, email)
	if err != nil {
		return err
	}
	if err := e.store.UpdateUser(ctx, u.ID, map[string]any{"role": role}); err != nil {
		return err
	}
	e.recorder.Record(ctx, audit.Entry{
		Actor:        e.actor,
		Action:       models.ActionUpdateUser,
		Details:      fmt.Sprintf("Role of %s set to %s from admin CLI", u.Email, role),
		ResourceType: models.ResourceUser,
		ResourceID:   u.ID,
		Metadata:     map[string]any{"previousRole": string(u.Role), "role": string(role)},
	})
	fmt.Fprintf(e.out, "%s is now %s\n", u.Email, role)
	return nil
}

func setActive(ctx context.Context, e *env, email string, active bool) error {
	u, err := findUser(ctx, e, email)
	if err != nil {
		return err
	}
	if err := e.store.UpdateUser(ctx, u.ID, map[string]any{"is_active": active}); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	e.recorder.Record(ctx, audit.Entry{
		Actor:        e.actor,
		Action:       models.ActionUpdateUser,
		Details:      fmt.Sprintf("Account %s %s from admin CLI", u.Email, state),
		ResourceType: models.ResourceUser,
		ResourceID:   u.ID,
	})
	fmt.Fprintf(e.out, "%s %s\n", u.Email, state)
	return nil
}
