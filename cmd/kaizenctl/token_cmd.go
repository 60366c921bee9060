package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	"github.com/noah-isme/kaizen-portal-api/internal/service"
	"github.com/noah-isme/kaizen-portal-api/pkg/config"
)

type tokenOutput struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
}

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage admin access tokens",
	}

	var (
		userID     string
		name       string
		role       string
		department string
		ttl        time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an admin token with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			auth := service.NewAuthService(nil, nil, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				AccessTokenExpiry: cfg.JWT.Expiration,
				Issuer:            cfg.JWT.Issuer,
			})
			actor := models.Actor{
				ID:         userID,
				Name:       name,
				Role:       models.UserRole(strings.ToUpper(role)),
				Department: department,
			}
			token, expiresAt, err := auth.IssueToken(actor, ttl)
			if err != nil {
				return err
			}
			claims, err := auth.ValidateToken(token)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:      token,
				ExpiresAt:  expiresAt,
				UserID:     claims.UserID,
				Role:       string(claims.Role),
				Department: claims.Department,
			})
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "Admin user id (required)")
	issue.Flags().StringVar(&name, "name", "", "Display name stamped on edits and decisions")
	issue.Flags().StringVar(&role, "role", string(models.RoleSuperAdmin), "SUPER_ADMIN or DEPARTMENT_ADMIN")
	issue.Flags().StringVar(&department, "department", "", "Department for DEPARTMENT_ADMIN tokens")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	_ = issue.MarkFlagRequired("user")

	cmd.AddCommand(issue)
	return cmd
}
