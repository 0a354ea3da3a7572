package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/reports"
)

var (
	listStatus     string
	reviewStatus   string
	reportLimit    int
	reportOffset   int
	reviewerUserID string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Work the moderation report queue",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports by status, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := reports.NewService(database.DB)

		queue, err := svc.ListByStatus(context.Background(),
			models.ReportStatus(listStatus), reportLimit, reportOffset)
		if err != nil {
			return err
		}

		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(queue)
		}

		if len(queue) == 0 {
			fmt.Printf("No %s reports\n", listStatus)
			return nil
		}
		for _, r := range queue {
			fmt.Printf("%s  %s  %s -> %s  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"),
				r.Reporter.Username, r.Reported.Username, r.Reason)
			if r.Description != "" {
				fmt.Printf("    %s\n", r.Description)
			}
		}
		fmt.Printf("%d report(s)\n", len(queue))
		return nil
	},
}

var reportsReviewCmd = &cobra.Command{
	Use:   "review <report-id>",
	Short: "Set a report's review status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewerUserID == "" {
			return fmt.Errorf("--by is required (reviewing admin's user id)")
		}

		svc := reports.NewService(database.DB)
		report, err := svc.SetStatus(context.Background(),
			reviewerUserID, args[0], models.ReportStatus(reviewStatus))
		if err != nil {
			return err
		}

		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(report)
		}
		fmt.Printf("Report %s is now %s\n", report.ID, report.Status)
		return nil
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&listStatus, "status", "pending", "Report status to list (pending|reviewed|resolved|dismissed)")
	reportsListCmd.Flags().IntVar(&reportLimit, "limit", 50, "Maximum reports to show")
	reportsListCmd.Flags().IntVar(&reportOffset, "offset", 0, "Offset into the queue")

	reportsReviewCmd.Flags().StringVar(&reviewStatus, "status", "reviewed", "New status (pending|reviewed|resolved|dismissed)")
	reportsReviewCmd.Flags().StringVar(&reviewerUserID, "by", "", "User id of the reviewing admin")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsReviewCmd)
}
