package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and writes the
// resulting config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to dailydash! Let's configure your server.")
	fmt.Println()

	cfg := DefaultConfig()

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	dbPrompt := promptui.Prompt{
		Label:   "Database file",
		Default: cfg.DBPath,
	}
	if cfg.DBPath, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database prompt: %w", err)
	}

	corsPrompt := promptui.Select{
		Label: "Allow all CORS origins (dev mode)",
		Items: []string{"no", "yes"},
	}
	_, corsChoice, err := corsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cors selection: %w", err)
	}
	cfg.AllowAllCORS = corsChoice == "yes"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nWrote %s. Start the server with `dailydash serve`.\n", path)
	return cfg, nil
}
