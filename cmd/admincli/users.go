package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/reports"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and manage user accounts",
}

var usersShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user and the reports filed against them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		user, err := identity.NewService(database.DB).GetByID(ctx, args[0])
		if err != nil {
			return err
		}
		against, err := reports.NewService(database.DB).ListAgainst(ctx, user.ID)
		if err != nil {
			return err
		}

		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"user":    user,
				"reports": against,
			})
		}

		kind := "guest"
		if user.IsAuthenticated() {
			kind = "authenticated"
		}
		fmt.Printf("%s  %s (%s)\n", user.ID, user.Username, kind)
		if user.LastSeenAt != nil {
			fmt.Printf("  last seen %s\n", user.LastSeenAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("  %d report(s) against this user\n", len(against))
		for _, r := range against {
			fmt.Printf("    %s  [%s]  %s\n", r.CreatedAt.Format("2006-01-02"), r.Status, r.Reason)
		}
		return nil
	},
}

var usersAnonymizeCmd = &cobra.Command{
	Use:   "anonymize <user-id>",
	Short: "Strip a user's identity and profile, keeping their row",
	Long: `Anonymize clears the user's identity, profile, and contact fields
but keeps the row so authored messages and comments keep resolving.
This is the standard account removal path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := identity.NewService(database.DB).Anonymize(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("User %s anonymized\n", args[0])
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "hard-delete <user-id>",
	Short: "Permanently delete a user row",
	Long: `Hard delete removes the user row entirely, orphaning any content
they authored. Prefer anonymize; use this only for legal removal
requests.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("hard delete is irreversible; re-run with --yes to confirm")
		}
		if err := identity.NewService(database.DB).HardDelete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("User %s deleted\n", args[0])
		return nil
	},
}

func init() {
	usersDeleteCmd.Flags().Bool("yes", false, "Confirm the deletion")

	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersAnonymizeCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
