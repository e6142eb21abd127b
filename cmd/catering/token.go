package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
)

var errTokenInProduction = errors.New("token command is disabled in production")

// newTokenCmd issues bearer tokens signed with JWT_SECRET. Useful against a
// local instance; production tokens come from the identity provider.
func newTokenCmd(e *env) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.IsProduction() {
				return errTokenInProduction
			}
			if !slices.Contains([]string{rbac.RoleCustomer, rbac.RoleAdmin}, role) {
				return fmt.Errorf("%w: %q", rbac.ErrInvalidRole, role)
			}

			id := uuid.New()
			if subject != "" {
				parsed, err := uuid.Parse(subject)
				if err != nil {
					return fmt.Errorf("subject must be a uuid: %w", err)
				}
				id = parsed
			}

			v, err := newVerifier(e.cfg)
			if err != nil {
				return err
			}
			tok, err := v.Issue(identity.Identity{Subject: id, Role: role}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", rbac.RoleCustomer, "role claim: customer or admin")
	cmd.Flags().StringVar(&subject, "subject", "", "customer id; a random one when empty")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
