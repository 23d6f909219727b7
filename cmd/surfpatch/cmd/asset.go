package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
)

// assetCmd groups the Metaplex Core asset commands
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Inspect and patch Metaplex Core assets",
}

var assetShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show an asset header and its plugins",
	Long: `Show the header of a Metaplex Core asset, its plugin registry and the
decoded payload of every plugin.

Example:
  surfpatch asset show 7Xq...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := address.ParseKeys(args...)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		view, err := p.InspectCore(cmd.Context(), keys[0], codec.KeyAssetV1)
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

var assetSetOwnerCmd = &cobra.Command{
	Use:   "set-owner <key> <new-owner>",
	Short: "Replace the owner of an asset",
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
		res, err := p.SetAssetOwner(cmd.Context(), keys[0], keys[1])
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

var assetSetAuthorityCmd = &cobra.Command{
	Use:   "set-authority <key> <new-authority>",
	Short: "Replace the update authority of an asset",
	Long: `Replace the update authority of an asset. With --collection the asset is
moved into the collection at <new-authority> instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, _ := cmd.Flags().GetBool("collection")
		keys, err := address.ParseKeys(args...)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.SetAssetAuthority(cmd.Context(), keys[0], keys[1], collection)
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(assetCmd)
	assetCmd.AddCommand(assetShowCmd, assetSetOwnerCmd, assetSetAuthorityCmd)
	assetSetAuthorityCmd.Flags().Bool("collection", false, "Treat the new authority as a collection")
}
