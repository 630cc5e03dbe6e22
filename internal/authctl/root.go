// Package authctl implements the operator command line: minting and
// inspecting tokens, hashing passwords and migrating the database.
package authctl

import (
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/spf13/cobra"
)

// options are shared by all subcommands.
type options struct {
	secret string
}

// NewRootCmd builds the authctl command tree.
func NewRootCmd() *cobra.Command {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	opts := &options{}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Operator tools for the azura authentication server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.secret, "secret", defaults.SecretKey, "JWT signing secret")

	root.AddCommand(
		tokenCmd(opts, defaults),
		passwordCmd(defaults),
		migrateCmd(defaults),
	)

	return root
}
