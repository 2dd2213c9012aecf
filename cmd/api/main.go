package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmtrack/core/cmd/api/commands"
)

// @title tmtrack API
// @version 1.0
// @description Task-tracking record service with identity annotation.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the auth token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "tmtrack",
		Short: "tmtrack API Server",
		Long:  `tmtrack is a task-tracking record service: clients create and update task records, list and fetch tasks, and manage a shared category list. Every response is annotated with the identity resolved from the bearer token.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewBackupCommand())
	rootCmd.AddCommand(commands.NewRestoreCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
