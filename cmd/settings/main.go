package main

import (
	"fmt"
	"os"

	"lexfund_crm_go/config"
	"lexfund_crm_go/db"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/spf13/cobra"
)

// cliAuditContext attributes CLI mutations in the audit log
var cliAuditContext = services.AuditContext{
	UserName: "cli",
	UserRole: "admin",
}

var (
	overrideScope string
	overrideOwner string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change application settings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := db.AutoMigrate(
				&models.AuditLog{},
				&models.SettingsCategory{}, &models.Setting{},
				&models.UserSetting{}, &models.AgentSetting{},
			); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			services.InitializeSettings(db.DB)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			db.Close()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every category and setting with its current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := services.Settings.ListCategories()
			if err != nil {
				return err
			}
			for _, category := range categories {
				fmt.Printf("%s (%s)\n", category.Label, category.Key)
				for _, s := range category.Settings {
					value := s.Value
					if value == "" {
						value = s.DefaultValue + " (default)"
					}
					fmt.Printf("  %-28s %-8s %s\n", s.Key, s.ValueType, value)
				}
				fmt.Println()
			}
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <category> <key>",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setting, ok := services.Settings.Lookup(args[0], args[1])
			if !ok {
				return fmt.Errorf("setting %s.%s not found", args[0], args[1])
			}
			effective, _ := services.Settings.Resolve(args[0], args[1], overrideOwner, overrideOwner)
			fmt.Printf("Key:         %s.%s\n", args[0], args[1])
			fmt.Printf("Type:        %s\n", setting.ValueType)
			fmt.Printf("Value:       %s\n", setting.Value)
			fmt.Printf("Default:     %s\n", setting.DefaultValue)
			fmt.Printf("Effective:   %s\n", effective)
			if setting.Description != "" {
				fmt.Printf("Description: %s\n", setting.Description)
			}
			return nil
		},
	}
	getCmd.Flags().StringVar(&overrideOwner, "for", "", "Resolve overrides for this account ID")

	setCmd := &cobra.Command{
		Use:   "set <category> <key> <value>",
		Short: "Change a setting's value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			setting, err := services.Settings.SetValue(cliAuditContext, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Printf("%s.%s = %s\n", args[0], args[1], setting.Value)
			return nil
		},
	}

	setOverrideCmd := &cobra.Command{
		Use:   "set-override <category> <key> <value>",
		Short: "Set a per-user or per-agent override",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if overrideOwner == "" {
				return fmt.Errorf("--owner is required")
			}
			scope := services.OverrideScope(overrideScope)
			if scope != services.ScopeUser && scope != services.ScopeAgent {
				return fmt.Errorf("--scope must be user or agent")
			}
			if err := services.Settings.SetOverride(cliAuditContext, scope, overrideOwner, args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Printf("%s override for %s: %s.%s = %s\n", scope, overrideOwner, args[0], args[1], args[2])
			return nil
		},
	}
	setOverrideCmd.Flags().StringVar(&overrideScope, "scope", "user", "Override scope: user or agent")
	setOverrideCmd.Flags().StringVar(&overrideOwner, "owner", "", "Account ID the override applies to")

	unsetOverrideCmd := &cobra.Command{
		Use:   "unset-override <category> <key>",
		Short: "Remove a per-user or per-agent override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if overrideOwner == "" {
				return fmt.Errorf("--owner is required")
			}
			scope := services.OverrideScope(overrideScope)
			if scope != services.ScopeUser && scope != services.ScopeAgent {
				return fmt.Errorf("--scope must be user or agent")
			}
			if err := services.Settings.DeleteOverride(cliAuditContext, scope, overrideOwner, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s override for %s removed: %s.%s\n", scope, overrideOwner, args[0], args[1])
			return nil
		},
	}
	unsetOverrideCmd.Flags().StringVar(&overrideScope, "scope", "user", "Override scope: user or agent")
	unsetOverrideCmd.Flags().StringVar(&overrideOwner, "owner", "", "Account ID the override applies to")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the default categories and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return services.Settings.Seed()
		},
	}

	rootCmd.AddCommand(listCmd, getCmd, setCmd, setOverrideCmd, unsetOverrideCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
