package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"closestguess/internal/commit"
	"closestguess/internal/game"
)

// newCommitmentCmd prints the digest an authority publishes with
// guess/start. Nothing is sent to a node.
func newCommitmentCmd() *cobra.Command {
	var (
		number    uint64
		secret    string
		secretHex string
		identity  string
	)
	cmd := &cobra.Command{
		Use:   "commitment",
		Short: "Compute the commitment digest for a number, secret and authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := []byte(secret)
			if secretHex != "" {
				if secret != "" {
					return fmt.Errorf("use only one of --secret and --secret-hex")
				}
				b, err := commit.FromHex(secretHex)
				if err != nil {
					return fmt.Errorf("decode --secret-hex: %w", err)
				}
				raw = b
			}
			digest, err := game.GenerateCommitment(identity, number, raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), commit.ToHex(digest))
			return err
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&number, "number", 0, "committed number in [1,100]")
	f.StringVar(&secret, "secret", "", "secret salt (raw string)")
	f.StringVar(&secretHex, "secret-hex", "", "secret salt (hex)")
	f.StringVar(&identity, "authority", "", "authority identity the commitment is bound to")
	_ = cmd.MarkFlagRequired("authority")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}
