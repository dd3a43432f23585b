package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/types"
	"github.com/spf13/cobra"
)

type TransferConfig struct {
	Key     keyFlags
	To      string
	Amount  string
	Seed    uint64
	Verbose bool
}

var transferConfig TransferConfig

// transferCmd represents the transfer command
var transferCmd = &cobra.Command{
	Use:   "transfer [flags]",
	Short: "Transfer currency to another wallet",
	Long: `This command moves currency from the wallet of the signing key to the recipient.
The private key can be provided either directly via --private-key flag
or via a file using --private-key-file flag.

Examples:
  # Transfer 30 using private key file
  transfer -t 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY -a 30 -f /path/to/key.txt

  # Send the same transfer twice; a different seed keeps the operations distinct
  transfer -t 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY -a 30 -s 2 -p "hex-seed"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transfer(cmd.Context(), transferConfig)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferConfig.Key.register(transferCmd)
	addNodeURLFlag(transferCmd)
	transferCmd.Flags().StringVarP(&transferConfig.To, "to", "t", "", "public key of recipient")
	transferCmd.Flags().StringVarP(&transferConfig.Amount, "amount", "a", "", "amount")
	transferCmd.Flags().Uint64VarP(&transferConfig.Seed, "seed", "s", 0, "disambiguates otherwise identical transfers")
	transferCmd.Flags().BoolVarP(&transferConfig.Verbose, "verbose", "v", false, "verbose output")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
}

func transfer(parent context.Context, cfg TransferConfig) error {
	amount, err := strconv.ParseUint(strings.ReplaceAll(cfg.Amount, "_", ""), 10, 64)
	if err != nil {
		return fmt.Errorf("could not parse amount string: %w", err)
	}
	to, err := types.PublicKeyFromString(cfg.To)
	if err != nil {
		return err
	}
	priv, err := cfg.Key.load()
	if err != nil {
		return fmt.Errorf("failed to load sender private key: %w", err)
	}

	c, err := createClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Verbose {
		logx.Debug("TRANSFER CLI", fmt.Sprintf("Sending transfer of %d to %s via %s", amount, to, nodeURL))
	}
	ctx, cancel := context.WithTimeout(parent, requestTimeout)
	defer cancel()
	receipt, err := c.Transfer(ctx, to, amount, cfg.Seed, priv)
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	return printJSON(receipt)
}
