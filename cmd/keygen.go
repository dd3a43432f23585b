package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/mezonai/cryptocurrency/client"
	"github.com/spf13/cobra"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a wallet key pair",
	Long: `Generates an ed25519 key pair. The public key (base58) identifies the wallet,
the hex seed is the private key accepted by --private-key and --private-key-file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, seed, err := client.GenerateKey()
		if err != nil {
			return err
		}
		seedHex := hex.EncodeToString(seed)
		if keygenOut != "" {
			if err := os.WriteFile(keygenOut, []byte(seedHex+"\n"), 0o600); err != nil {
				return fmt.Errorf("failed to write key file: %w", err)
			}
			seedHex = "written to " + keygenOut
		}
		return printJSON(map[string]string{
			"pub_key":     pub.String(),
			"private_key": seedHex,
		})
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "write the private key to this file instead of stdout")
}
