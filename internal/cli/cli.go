package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:          "govern",
		Short:        "weighted governance voting simulator",
		SilenceUsage: true,
	}
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().IntP("rows", "r", 7, "triangle rows")
	viper.BindPFlag("population.rows", rootCmd.PersistentFlags().Lookup("rows"))

	rootCmd.PersistentFlags().StringP("layout", "l", "polyhedral", "layout strategy (concentric, spiral, polyhedral, extended_spiral)")
	viper.BindPFlag("population.layout", rootCmd.PersistentFlags().Lookup("layout"))

	rootCmd.PersistentFlags().String("scheme", "ed25519", "identity scheme (ed25519, secp256k1, bls12381)")
	viper.BindPFlag("identity.scheme", rootCmd.PersistentFlags().Lookup("scheme"))

	rootCmd.PersistentFlags().String("votelog", "", "directory of the persistent vote log")
	viper.BindPFlag("votelog.path", rootCmd.PersistentFlags().Lookup("votelog"))

	regCommands()

	return rootCmd.Execute()
}
