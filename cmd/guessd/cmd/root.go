package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the guessd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "guessd",
		Short:         "Closest-guess escrow game ABCI daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().String("home", ".guessd", "node home directory (state is stored under <home>/data)")
	_ = v.BindPFlag("home", rootCmd.PersistentFlags().Lookup("home"))

	rootCmd.AddCommand(
		newStartCmd(v),
		newCommitmentCmd(),
	)
	return rootCmd
}
