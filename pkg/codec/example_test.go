package codec_test

import (
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"

	"github.com/ssargent/surfpatch/pkg/codec"
)

// ExamplePatchHeader demonstrates replacing the owner of an asset without
// touching anything after the header.
func ExamplePatchHeader() {
	header := &codec.AssetHeader{
		Owner:           solana.SystemProgramID,
		UpdateAuthority: codec.UpdateAuthority{Kind: codec.UpdateAuthorityNone},
		Name:            "Example",
		URI:             "https://example.com/a.json",
	}
	data, err := header.Encode()
	if err != nil {
		log.Fatal(err)
	}
	// pretend a plugin section follows the header
	data = append(data, 0x03, 0xDE, 0xAD)

	res, err := codec.PatchHeader(data, codec.SetOwner{Owner: solana.TokenProgramID})
	if err != nil {
		log.Fatal(err)
	}

	patched, _, err := codec.DecodeAssetHeader(res.Data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Header length: %d\n", res.HeaderLen)
	fmt.Printf("Total length: %d -> %d\n", len(data), len(res.Data))
	fmt.Printf("Owner: %s\n", patched.Owner)
	fmt.Printf("Tail: %x\n", res.Data[res.HeaderLen:])

	// Output:
	// Header length: 76
	// Total length: 79 -> 79
	// Owner: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
	// Tail: 03dead
}

// ExamplePatchTokenRecord demonstrates unlocking a token record.
func ExamplePatchTokenRecord() {
	delegate := solana.SystemProgramID
	record := &codec.TokenRecord{
		Key:      codec.TokenRecordKey,
		Bump:     255,
		State:    codec.TokenStateLocked,
		Delegate: &delegate,
	}
	data, err := record.Encode()
	if err != nil {
		log.Fatal(err)
	}

	patched, err := codec.PatchTokenRecord(data, func(tr *codec.TokenRecord) error {
		tr.State = codec.TokenStateUnlocked
		tr.Delegate = nil
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Width: %d\n", len(patched))
	fmt.Printf("State byte: %d\n", patched[codec.TokenRecordStateOffset])
	fmt.Printf("Delegate slot empty: %t\n", codec.SlotTag8.IsZeroSlot(patched, codec.TokenRecordDelegateOffset, 32))

	// Output:
	// Width: 80
	// State byte: 0
	// Delegate slot empty: true
}
