package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardanlabs/gambit/foundation/blockchain/keys"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Mint a new account and print the values needed to premine it",
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := keys.Random()
		if err != nil {
			return fmt.Errorf("generating key pair: %w", err)
		}

		fmt.Printf("address:     %s\n", kp.Address())
		fmt.Printf("private key: %s\n", kp.PrivateKeyHex())
		fmt.Println()
		fmt.Println("set these on the node that should premine this account:")
		fmt.Printf("  GAMBITD_CHAIN_PREMINE_ADDRESS=%s\n", kp.Address())
		fmt.Printf("  GAMBITD_CHAIN_PREMINE_BALANCE=<amount>\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}
