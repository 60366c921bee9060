package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/service"
	"github.com/noah-isme/kaizen-portal-api/pkg/export"
)

func newApprovalLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approval-level <amount>...",
		Short: "Show which approval tier each rupee amount routes to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]dto.ApprovalPolicyResponse, 0, len(args))
			for _, raw := range args {
				amount, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || amount < 0 {
					return fmt.Errorf("invalid amount %q", raw)
				}
				level := service.ApprovalLevelOf(amount)
				out = append(out, dto.ApprovalPolicyResponse{
					Amount:    amount,
					Level:     level,
					Threshold: service.ThresholdDescription(level),
					Formatted: export.FormatINR(amount),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}
