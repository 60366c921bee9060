package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/kaizen-portal-api/internal/service"
)

type idInspection struct {
	ID        string     `json:"id"`
	Valid     bool       `json:"valid"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Generate or inspect Kaizen identifiers",
	}

	var count int
	generate := &cobra.Command{
		Use:   "new",
		Short: "Generate fresh Kaizen IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := service.NewIdentifierService()
			if count < 1 {
				count = 1
			}
			out := make([]string, 0, count)
			for i := 0; i < count; i++ {
				out = append(out, ids.Generate())
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 1, "Number of IDs to generate")

	inspect := &cobra.Command{
		Use:   "inspect <id>...",
		Short: "Validate IDs and decode their creation time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]idInspection, 0, len(args))
			for _, id := range args {
				item := idInspection{ID: id, Valid: service.ValidateID(id)}
				if ts, ok := service.ExtractTimestamp(id); ok && item.Valid {
					ts = ts.UTC()
					item.CreatedAt = &ts
				}
				out = append(out, item)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.AddCommand(generate, inspect)
	return cmd
}
