package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
)

// tokenRecordCmd groups the programmable NFT token record commands
var tokenRecordCmd = &cobra.Command{
	Use:     "token-record",
	Aliases: []string{"tr"},
	Short:   "Inspect and patch programmable NFT token records",
}

var tokenRecordShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show a token record",
	Long: `Show a token record by address, or derive the address from a mint and
either its token account or the wallet holding it.

Examples:
  surfpatch token-record show 9Fk...
  surfpatch token-record show --mint 4Ab... --token 8Cd...
  surfpatch token-record show --mint 4Ab... --wallet 2Ef...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := resolveTokenRecordKey(cmd, args)
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		tr, err := p.InspectTokenRecord(cmd.Context(), key)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), tr)
		}
		printTokenRecord(cmd.OutOrStdout(), key, tr)
		return nil
	},
}

var tokenRecordSetStateCmd = &cobra.Command{
	Use:   "set-state <key> <state>",
	Short: "Set the state of a token record (unlocked, locked, listed)",
	Long: `Set the state of a token record. With --clear-delegate the delegate,
its role and the locked transfer destination are cleared as well.

Example:
  surfpatch token-record set-state 9Fk... unlocked --clear-delegate`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clearDelegate, _ := cmd.Flags().GetBool("clear-delegate")
		keys, err := address.ParseKeys(args[0])
		if err != nil {
			return err
		}
		state, err := codec.ParseTokenState(args[1])
		if err != nil {
			return err
		}
		p, err := getPatcher()
		if err != nil {
			return err
		}
		res, err := p.SetTokenRecordState(cmd.Context(), keys[0], state, clearDelegate)
		if err != nil {
			return err
		}
		return printPatch(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(tokenRecordCmd)
	tokenRecordCmd.AddCommand(tokenRecordShowCmd, tokenRecordSetStateCmd)
	tokenRecordShowCmd.Flags().String("mint", "", "Mint of the programmable NFT")
	tokenRecordShowCmd.Flags().String("token", "", "Token account holding the NFT")
	tokenRecordShowCmd.Flags().String("wallet", "", "Wallet holding the NFT (its associated token account is used)")
	tokenRecordSetStateCmd.Flags().Bool("clear-delegate", false, "Clear the delegate, delegate role and locked transfer")
}

func resolveTokenRecordKey(cmd *cobra.Command, args []string) (solana.PublicKey, error) {
	mint, _ := cmd.Flags().GetString("mint")
	token, _ := cmd.Flags().GetString("token")
	wallet, _ := cmd.Flags().GetString("wallet")

	if len(args) == 1 {
		if mint != "" || token != "" || wallet != "" {
			return solana.PublicKey{}, fmt.Errorf("pass either a token record address or --mint with --token/--wallet, not both")
		}
		keys, err := address.ParseKeys(args[0])
		if err != nil {
			return solana.PublicKey{}, err
		}
		return keys[0], nil
	}

	switch {
	case mint == "":
		return solana.PublicKey{}, fmt.Errorf("a token record address or --mint is required")
	case token != "" && wallet != "":
		return solana.PublicKey{}, fmt.Errorf("--token and --wallet are mutually exclusive")
	case token != "":
		keys, err := address.ParseKeys(mint, token)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return address.TokenRecord(keys[0], keys[1])
	case wallet != "":
		keys, err := address.ParseKeys(mint, wallet)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return address.TokenRecordForWallet(keys[1], keys[0])
	}
	return solana.PublicKey{}, fmt.Errorf("--mint needs --token or --wallet")
}
