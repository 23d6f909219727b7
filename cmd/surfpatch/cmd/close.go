package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
)

// closeCmd represents the close command
var closeCmd = &cobra.Command{
	Use:   "close <key>",
	Short: "Close an account",
	Long: `Close an account by writing empty data and zero lamports owned by the
system program. The previous state is snapshotted first.

Example:
  surfpatch close 7Xq...`,
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
		res, err := p.Close(cmd.Context(), keys[0])
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
