package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"dailydash/internal/accounts"
	"dailydash/internal/config"
	"dailydash/internal/db"
	"dailydash/internal/domain"
)

var addUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Create a user account interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		emailPrompt := promptui.Prompt{
			Label: "Email",
			Validate: func(s string) error {
				if !strings.Contains(s, "@") {
					return fmt.Errorf("not an email address")
				}
				return nil
			},
		}
		email, err := emailPrompt.Run()
		if err != nil {
			return fmt.Errorf("email prompt: %w", err)
		}

		namePrompt := promptui.Prompt{
			Label: "Name",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			},
		}
		name, err := namePrompt.Run()
		if err != nil {
			return fmt.Errorf("name prompt: %w", err)
		}

		passwordPrompt := promptui.Prompt{
			Label: "Password",
			Mask:  '*',
			Validate: func(s string) error {
				if len(s) < 4 {
					return fmt.Errorf("password too short")
				}
				return nil
			},
		}
		password, err := passwordPrompt.Run()
		if err != nil {
			return fmt.Errorf("password prompt: %w", err)
		}

		rolePrompt := promptui.Select{
			Label: "Role",
			Items: []string{string(domain.RoleReader), string(domain.RoleAdmin)},
		}
		_, role, err := rolePrompt.Run()
		if err != nil {
			return fmt.Errorf("role selection: %w", err)
		}

		store := accounts.NewStore(database)
		user, err := store.CreateUser(context.Background(), email, password, name, domain.Role(role))
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		fmt.Printf("Created %s user %s (#%d)\n", user.Role, user.Email, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addUserCmd)
}
