package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to bandobast! Let's configure the event portal.")
	fmt.Println()

	cfg := DefaultConfig()

	eventPrompt := promptui.Prompt{
		Label:   "Event name",
		Default: cfg.EventName,
	}
	eventName, err := eventPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("event name: %w", err)
	}
	cfg.EventName = eventName

	basePrompt := promptui.Prompt{
		Label:   "Base directory served by the file endpoint",
		Default: cfg.BaseDir,
	}
	baseDir, err := basePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("base dir: %w", err)
	}
	cfg.BaseDir = baseDir

	inboxPrompt := promptui.Prompt{
		Label:   "Inbox directory with planning documents",
		Default: cfg.InboxDir,
		Validate: func(s string) error {
			ok, err := within(cfg.BaseDir, s)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("must be inside %s", cfg.BaseDir)
			}
			return nil
		},
	}
	inboxDir, err := inboxPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("inbox dir: %w", err)
	}
	cfg.InboxDir = inboxDir

	scratchPrompt := promptui.Prompt{
		Label:     "Skip editor lock files and OS metadata (" + strings.Join(ScratchExcludes, ", ") + ")",
		IsConfirm: true,
	}
	_, err = scratchPrompt.Run()
	skipScratch := err == nil
	if err != nil && err != promptui.ErrAbort {
		return nil, fmt.Errorf("scratch excludes: %w", err)
	}

	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for none)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	cfg.Exclude = excludePatterns(skipScratch, excludeStr)

	groupingPrompt := promptui.Select{
		Label: "Default KML grouping",
		Items: []string{
			"city: one folder per layer",
			"ps:   one folder per police station",
		},
	}
	groupingIdx, _, err := groupingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("kml grouping: %w", err)
	}
	cfg.KML.Grouping = []string{"city", "ps"}[groupingIdx]

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	authPrompt := promptui.Select{
		Label: "Require API tokens for the HTTP API?",
		Items: []string{"no", "yes"},
	}
	authIdx, _, err := authPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("auth selection: %w", err)
	}
	cfg.Server.RequireAuth = authIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	if cfg.Server.RequireAuth {
		fmt.Println("Create a token with: bandobast token create <name>")
	}
	return cfg, nil
}

// excludePatterns builds the exclude list chosen in the wizard. It is empty
// unless the operator opted into ScratchExcludes or typed extra patterns.
func excludePatterns(skipScratch bool, extra string) []string {
	var out []string
	if skipScratch {
		out = append(out, ScratchExcludes...)
	}
	return append(out, splitAndTrim(extra)...)
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
