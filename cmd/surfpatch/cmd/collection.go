package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
)

// collectionCmd groups the Metaplex Core collection commands
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Inspect and patch Metaplex Core collections",
}

var collectionShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a collection header and its plugins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := address.ParseKeys(args...)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		view, err := p.InspectCore(cmd.Context(), keys[0], codec.KeyCollectionV1)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), view)
		}
		printCore(cmd.OutOrStdout(), view)
		return nil
	},
}

var collectionSetAuthorityCmd = &cobra.Command{
	Use:   "set-authority <key> <new-authority>",
	Short: "Replace the update authority of a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := address.ParseKeys(args...)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.SetCollectionAuthority(cmd.Context(), keys[0], keys[1])
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionShowCmd, collectionSetAuthorityCmd)
}
