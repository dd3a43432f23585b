package cmd

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/mezonai/cryptocurrency/client"
	"github.com/mezonai/cryptocurrency/config"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/spf13/cobra"
)

// keyFlags selects the signing key of a command.
type keyFlags struct {
	PrivateKey     string
	PrivateKeyFile string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.PrivateKeyFile, "private-key-file", "f", "", "private key file (hex seed or full key)")
	cmd.Flags().StringVarP(&k.PrivateKey, "private-key", "p", "", "private key in hex")
}

func (k *keyFlags) load() (ed25519.PrivateKey, error) {
	if k.PrivateKey != "" {
		return config.ParseEd25519PrivKey(k.PrivateKey)
	}
	if k.PrivateKeyFile == "" {
		return nil, fmt.Errorf("either --private-key or --private-key-file is required")
	}
	return config.LoadEd25519PrivKey(k.PrivateKeyFile)
}

var nodeURL string

func addNodeURLFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&nodeURL, "node-url", "u", "http://localhost:8545", "JSON-RPC endpoint of the node")
}

func createClient() (*client.LedgerRPCClient, error) {
	return client.NewClient(client.Config{Endpoint: nodeURL})
}

func printJSON(v interface{}) error {
	enc := jsonx.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
