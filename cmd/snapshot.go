package cmd

import (
	"fmt"

	"github.com/mezonai/cryptocurrency/config"
	"github.com/mezonai/cryptocurrency/snapshot"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/spf13/cobra"
)

var (
	snapshotConfigPath string
	snapshotDir        string
	snapshotFile       string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or restore the wallet set of a stopped node",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every wallet with its state hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openStore(snapshotConfigPath)
		if err != nil {
			return err
		}
		defer ws.MustClose()

		path, err := snapshot.WriteSnapshot(snapshotDir, ws)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a verified dump into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := snapshotFile
		if path == "" {
			path = snapshot.GetSnapshotPath(snapshotDir)
		}
		file, err := snapshot.ReadSnapshot(path)
		if err != nil {
			return err
		}

		ws, err := openStore(snapshotConfigPath)
		if err != nil {
			return err
		}
		defer ws.MustClose()

		if err := snapshot.Restore(ws, file); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		return printJSON(file.Meta)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)

	snapshotCmd.PersistentFlags().StringVarP(&snapshotConfigPath, "config", "c", "config/node.yml", "node config file (yaml)")
	snapshotCmd.PersistentFlags().StringVarP(&snapshotDir, "dir", "d", snapshot.DefaultDirectory, "snapshot directory")
	snapshotImportCmd.Flags().StringVar(&snapshotFile, "file", "", "snapshot file (defaults to the latest in --dir)")
}

func openStore(configPath string) (store.WalletStore, error) {
	cfg, err := config.LoadNodeConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Type == store.MemoryStoreType {
		return nil, fmt.Errorf("the memory store does not outlive the node")
	}
	return store.CreateStore(&cfg.Store)
}
