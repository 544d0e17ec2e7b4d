package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/repository"
)

var (
	createUsername string
	createEmail    string
	createPassword string
	createRole     string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account directly in the database",
	Long: "Bootstrap command for the first manager account, before any user " +
		"exists to call the admin API with.",
	RunE: runCreateUser,
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&createUsername, "username", "", "Login username (required)")
	f.StringVar(&createEmail, "email", "", "Email address (required)")
	f.StringVar(&createPassword, "password", "", "Initial password, min 12 characters (required)")
	f.StringVar(&createRole, "role", string(domain.RoleManager), "Role: manager or data_entry")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	role := domain.Role(createRole)
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q: must be manager or data_entry", createRole)
	}
	if len(createPassword) < 12 {
		return fmt.Errorf("password must be at least 12 characters")
	}

	_, zapLog, db := setup()
	defer func() { _ = zapLog.Sync() }()

	hash, err := bcrypt.GenerateFromPassword([]byte(createPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:     createUsername,
		Email:        createEmail,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("Created %s user %s (%s)\n", role, user.Username, user.ID)
	return nil
}
