// Package address derives and validates the account addresses this tool
// works with. Derivation is delegated to solana-go.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ErrInvalidKey is returned for anything that is not a base58 encoded 32
// byte public key.
var ErrInvalidKey = errors.New("invalid public key")

var (
	seedMetadata    = []byte("metadata")
	seedEdition     = []byte("edition")
	seedTokenRecord = []byte("token_record")
)

// ParseKey validates and decodes a base58 public key. It never touches the
// network.
func ParseKey(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	return pk, nil
}

// ParseKeys validates every argument before returning any of them.
func ParseKeys(args ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(args))
	for _, a := range args {
		pk, err := ParseKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

// Metadata returns the token metadata account of mint.
func Metadata(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindTokenMetadataAddress(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive metadata address for %s: %w", mint, err)
	}
	return addr, nil
}

// MasterEdition returns the master edition account of mint.
func MasterEdition(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		seedMetadata,
		solana.TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		seedEdition,
	}, solana.TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive edition address for %s: %w", mint, err)
	}
	return addr, nil
}

// TokenRecord returns the token record of a programmable mint held in the
// token account token.
func TokenRecord(mint, token solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		seedMetadata,
		solana.TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		seedTokenRecord,
		token.Bytes(),
	}, solana.TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive token record for mint %s token %s: %w", mint, token, err)
	}
	return addr, nil
}

// AssociatedToken returns the associated token account of wallet for mint.
func AssociatedToken(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account for %s: %w", wallet, err)
	}
	return addr, nil
}

// TokenRecordForWallet chains AssociatedToken and TokenRecord.
func TokenRecordForWallet(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, err := AssociatedToken(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return TokenRecord(mint, ata)
}
