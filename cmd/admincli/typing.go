package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/presence"
)

var typingCmd = &cobra.Command{
	Use:   "typing",
	Short: "Typing indicator maintenance",
}

var typingSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired typing indicator rows",
	Long: `The server sweeps expired typing indicators on a timer; this runs
one sweep by hand, which is useful after downtime has let rows pile up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := presence.NewTracker(database.DB).Sweep(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired typing indicator(s)\n", removed)
		return nil
	},
}

func init() {
	typingCmd.AddCommand(typingSweepCmd)
}
