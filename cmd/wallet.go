package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mezonai/cryptocurrency/types"
	"github.com/spf13/cobra"
)

const requestTimeout = 10 * time.Second

var (
	createWalletKey  keyFlags
	createWalletName string
	walletPubKey     string
)

var createWalletCmd = &cobra.Command{
	Use:   "create-wallet",
	Short: "Create the wallet owned by the signing key",
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := createWalletKey.load()
		if err != nil {
			return err
		}
		c, err := createClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		receipt, err := c.CreateWallet(ctx, createWalletName, priv)
		if err != nil {
			return fmt.Errorf("create wallet failed: %w", err)
		}
		return printJSON(receipt)
	},
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show one wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := types.PublicKeyFromString(walletPubKey)
		if err != nil {
			return err
		}
		c, err := createClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		w, err := c.GetWallet(ctx, pk)
		if err != nil {
			return err
		}
		return printJSON(w)
	},
}

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List every wallet in ascending key order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := createClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		wallets, err := c.GetWallets(ctx)
		if err != nil {
			return err
		}
		return printJSON(wallets)
	},
}

var stateHashCmd = &cobra.Command{
	Use:   "state-hash",
	Short: "Print the digest of the whole wallet set",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := createClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		hash, err := c.StateHash(ctx)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createWalletCmd, walletCmd, walletsCmd, stateHashCmd)

	createWalletKey.register(createWalletCmd)
	createWalletCmd.Flags().StringVarP(&createWalletName, "name", "n", "", "display name of the wallet")
	addNodeURLFlag(createWalletCmd)

	walletCmd.Flags().StringVarP(&walletPubKey, "pub-key", "k", "", "wallet public key (base58)")
	_ = walletCmd.MarkFlagRequired("pub-key")
	addNodeURLFlag(walletCmd)

	addNodeURLFlag(walletsCmd)
	addNodeURLFlag(stateHashCmd)
}
