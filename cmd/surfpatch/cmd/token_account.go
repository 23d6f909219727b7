package cmd

import (
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
)

// tokenAccountCmd groups the SPL token account commands
var tokenAccountCmd = &cobra.Command{
	Use:     "token-account",
	Aliases: []string{"ta"},
	Short:   "Inspect and patch SPL token accounts",
}

var tokenAccountShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show a token account",
	Long: `Show a token account by address, or the associated token account of a
wallet for a mint.

Examples:
  surfpatch token-account show 8Cd...
  surfpatch token-account show --mint 4Ab... --wallet 2Ef...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := resolveTokenAccountKey(cmd, args)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		ta, err := p.InspectTokenAccount(cmd.Context(), key)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), ta)
		}
		printTokenAccount(cmd.OutOrStdout(), key, ta)
		return nil
	},
}

var tokenAccountSetOwnerCmd = &cobra.Command{
	Use:   "set-owner <key> <new-owner>",
	Short: "Replace the owner of a token account",
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
		res, err := p.SetTokenAccountOwner(cmd.Context(), keys[0], keys[1])
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

var tokenAccountSetAmountCmd = &cobra.Command{
	Use:   "set-amount <key> <amount>",
	Short: "Set the balance of a token account",
	Long: `Set the balance of a token account in base units. A delegated amount
larger than the new balance is reduced to it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := address.ParseKeys(args[0])
		if err != nil {
			return err
		}
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.SetTokenAccountAmount(cmd.Context(), keys[0], amount)
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

var tokenAccountSetStateCmd = &cobra.Command{
	Use:   "set-state <key> <state>",
	Short: "Set the state of a token account (initialized, frozen)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := address.ParseKeys(args[0])
		if err != nil {
			return err
		}
		state, err := codec.ParseAccountState(args[1])
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.SetTokenAccountState(cmd.Context(), keys[0], state)
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(tokenAccountCmd)
	tokenAccountCmd.AddCommand(tokenAccountShowCmd, tokenAccountSetOwnerCmd, tokenAccountSetAmountCmd, tokenAccountSetStateCmd)
	tokenAccountShowCmd.Flags().String("mint", "", "Mint of the token")
	tokenAccountShowCmd.Flags().String("wallet", "", "Wallet owning the associated token account")
}

func resolveTokenAccountKey(cmd *cobra.Command, args []string) (solana.PublicKey, error) {
	mint, _ := cmd.Flags().GetString("mint")
	wallet, _ := cmd.Flags().GetString("wallet")

	if len(args) == 1 {
		if mint != "" || wallet != "" {
			return solana.PublicKey{}, fmt.Errorf("pass either a token account address or --mint with --wallet, not both")
		}
		keys, err := address.ParseKeys(args[0])
		if err != nil {
			return solana.PublicKey{}, err
		}
		return keys[0], nil
	}
	if mint == "" || wallet == "" {
		return solana.PublicKey{}, fmt.Errorf("a token account address or --mint with --wallet is required")
	}
	keys, err := address.ParseKeys(mint, wallet)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address.AssociatedToken(keys[1], keys[0])
}
