package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
)

// snapshotCmd groups the snapshot commands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "List and restore pre-write snapshots",
	Long: `Every write made by surfpatch first stores the previous account state in
a local snapshot store under the data directory.`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [address]",
	Short: "List snapshots, oldest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter *solana.PublicKey
		if len(args) == 1 {
			keys, err := address.ParseKeys(args[0])
			if err != nil {
				return err
			}
			filter = &keys[0]
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		snaps, err := p.Snapshots(filter)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), snaps)
		}
		printSnapshots(cmd.OutOrStdout(), snaps)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Write a snapshot back to its account",
	Long: `Write a snapshot back to its account. The state being replaced is
snapshotted too, so a restore can itself be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.Restore(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotListCmd, snapshotRestoreCmd)
}
