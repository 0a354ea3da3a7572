package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
)

var output string = "text" // "text" or "json"

var rootCmd = &cobra.Command{
	Use:   "trekadmin",
	Short: "Trek Together admin CLI - moderation and maintenance",
	Long: `Trek Together admin CLI provides direct database access for
moderation work: reviewing reports, removing accounts, and sweeping
stale typing indicators. Run it on a host with database credentials.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using system environment variables")
		}
		if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		if err := database.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to connect to database: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(typingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
