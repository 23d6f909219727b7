package codec

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func testKey(seed byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = seed + byte(i)
	}
	return pk
}

func u64p(v uint64) *uint64 { return &v }

func sampleAsset() *AssetHeader {
	return &AssetHeader{
		Owner: testKey(1),
		UpdateAuthority: UpdateAuthority{
			Kind:    UpdateAuthorityCollection,
			Address: testKey(2),
		},
		Name: "Sample #7",
		URI:  "https://example.com/7.json",
		Seq:  u64p(3),
	}
}

func sampleCollection() *CollectionHeader {
	return &CollectionHeader{
		UpdateAuthority: testKey(9),
		Name:            "Sample Collection",
		URI:             "https://example.com/collection.json",
		NumMinted:       12,
		CurrentSize:     10,
	}
}

type pluginFixture struct {
	plugin    Plugin
	authority Authority
}

// buildWithPlugins lays out header | plugin header | payloads | registry,
// matching what the on-chain program writes.
func buildWithPlugins(t *testing.T, h Header, plugins []pluginFixture) []byte {
	t.Helper()
	buf, err := h.Encode()
	require.NoError(t, err)
	if len(plugins) == 0 {
		return buf
	}

	headerLen := len(buf)
	buf = append(buf, uint8(KeyPluginHeaderV1))
	buf = append(buf, make([]byte, 8)...)

	offsets := make([]uint64, len(plugins))
	for i, p := range plugins {
		offsets[i] = uint64(len(buf))
		payload, err := EncodePlugin(p.plugin)
		require.NoError(t, err)
		buf = append(buf, payload...)
	}

	registryOffset := uint64(len(buf))
	binary.LittleEndian.PutUint64(buf[headerLen+1:], registryOffset)

	w := NewWriter(64)
	require.NoError(t, w.PutU8(uint8(KeyPluginRegistry), "key"))
	require.NoError(t, w.PutCount(len(plugins), "registry"))
	for i, p := range plugins {
		require.NoError(t, w.PutU8(uint8(p.plugin.Kind()), "kind"))
		require.NoError(t, w.PutU8(uint8(p.authority.Kind), "authority"))
		if p.authority.Kind == AuthorityAddress {
			require.NoError(t, w.PutPublicKey(*p.authority.Address, "authority address"))
		}
		require.NoError(t, w.PutU64(offsets[i], "offset"))
	}
	require.NoError(t, w.PutCount(0, "external registry"))
	return append(buf, w.Bytes()...)
}

func samplePlugins() []pluginFixture {
	delegate := testKey(40)
	maxSupply := uint32(100)
	name := "Master"
	return []pluginFixture{
		{
			plugin: &Royalties{
				BasisPoints: 500,
				Creators: []Creator{
					{Address: testKey(30), Percentage: 60},
					{Address: testKey(31), Percentage: 40},
				},
				RuleSet: RuleSet{Kind: RuleSetProgramDenyList, Programs: []solana.PublicKey{testKey(32)}},
			},
			authority: Authority{Kind: AuthorityUpdateAuthority},
		},
		{
			plugin:    &FreezeDelegate{Frozen: true},
			authority: Authority{Kind: AuthorityAddress, Address: &delegate},
		},
		{
			plugin: &Attributes{AttributeList: []Attribute{
				{Key: "background", Value: "blue"},
				{Key: "eyes", Value: "laser"},
			}},
			authority: Authority{Kind: AuthorityUpdateAuthority},
		},
		{
			plugin:    &MasterEdition{MaxSupply: &maxSupply, Name: &name},
			authority: Authority{Kind: AuthorityUpdateAuthority},
		},
		{
			plugin:    &TransferDelegate{},
			authority: Authority{Kind: AuthorityOwner},
		},
	}
}
