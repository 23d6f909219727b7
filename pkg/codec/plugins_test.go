package codec

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPlugins_NoExtension(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), nil)
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)

	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)
	assert.Empty(t, reg.Entries)
	assert.Empty(t, reg.External)
}

func TestListPlugins_Entries(t *testing.T) {
	fixtures := samplePlugins()
	buf := buildWithPlugins(t, sampleAsset(), fixtures)
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)

	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)
	require.Len(t, reg.Entries, len(fixtures))
	assert.Equal(t, headerLen, reg.HeaderOffset)

	for i, entry := range reg.Entries {
		assert.Equal(t, fixtures[i].plugin.Kind(), entry.Kind, "entry %d", i)
		assert.Equal(t, fixtures[i].authority, entry.Authority, "entry %d", i)
		assert.Less(t, entry.Offset, reg.RegistryOffset)
	}
}

func TestDecodePlugin_MatchesFixtures(t *testing.T) {
	fixtures := samplePlugins()
	buf := buildWithPlugins(t, sampleCollection(), fixtures)
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)

	for i, entry := range reg.Entries {
		p, err := DecodePlugin(buf, entry)
		require.NoError(t, err, "entry %d", i)
		assert.Equal(t, fixtures[i].plugin, p, "entry %d", i)
	}
}

func TestDecodePlugin_IndependentOfCallOrder(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), samplePlugins())
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)

	alone := make([]Plugin, len(reg.Entries))
	for j, entry := range reg.Entries {
		alone[j], err = DecodePlugin(buf, entry)
		require.NoError(t, err)
	}

	for i := range reg.Entries {
		for j := range reg.Entries {
			if i == j {
				continue
			}
			_, err := DecodePlugin(buf, reg.Entries[i])
			require.NoError(t, err)
			got, err := DecodePlugin(buf, reg.Entries[j])
			require.NoError(t, err)
			assert.Equal(t, alone[j], got, "decoding %d after %d", j, i)
		}
	}

	// reverse order
	for j := len(reg.Entries) - 1; j >= 0; j-- {
		got, err := DecodePlugin(buf, reg.Entries[j])
		require.NoError(t, err)
		assert.Equal(t, alone[j], got)
	}
}

func TestListPlugins_Malformed(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), samplePlugins())
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)
	regOff := int(reg.RegistryOffset)

	testCases := []struct {
		name   string
		mutate func(b []byte) []byte
	}{
		{
			name: "wrong plugin header key",
			mutate: func(b []byte) []byte {
				b[headerLen] = uint8(KeyAssetV1)
				return b
			},
		},
		{
			name: "registry offset past end",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint64(b[headerLen+1:], uint64(len(b)+10))
				return b
			},
		},
		{
			name: "wrong registry key",
			mutate: func(b []byte) []byte {
				b[regOff] = uint8(KeyPluginHeaderV1)
				return b
			},
		},
		{
			name: "entry count beyond buffer",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[regOff+1:], 1_000_000)
				return b
			},
		},
		{
			name: "truncated registry",
			mutate: func(b []byte) []byte {
				return b[:regOff+8]
			},
		},
		{
			name: "entry offset past end",
			mutate: func(b []byte) []byte {
				// first entry: kind(1) authority(1) offset(8)
				binary.LittleEndian.PutUint64(b[regOff+1+4+2:], uint64(len(b)))
				return b
			},
		},
		{
			name: "plugin header truncated",
			mutate: func(b []byte) []byte {
				return b[:headerLen+4]
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.mutate(append([]byte{}, buf...))
			_, err := ListPlugins(b, headerLen)
			assert.ErrorIs(t, err, ErrMalformedRegistry)
		})
	}

	t.Run("header length outside buffer", func(t *testing.T) {
		_, err := ListPlugins(buf, len(buf)+1)
		assert.ErrorIs(t, err, ErrMalformedRegistry)
	})
}

func TestListPlugins_ExternalRegistry(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), samplePlugins()[:1])
	// Replace the empty external registry with one lifecycle-hook adapter.
	buf = buf[:len(buf)-4]
	adapterOffset := uint64(len(buf) - 20)

	w := NewWriter(64)
	require.NoError(t, w.PutCount(1, "external"))
	require.NoError(t, w.PutU8(0, "adapter type"))
	require.NoError(t, w.PutU8(uint8(AuthorityUpdateAuthority), "authority"))
	require.NoError(t, w.PutBorshOption(true, "checks"))
	require.NoError(t, w.PutCount(2, "checks"))
	require.NoError(t, w.PutU8(1, "event"))
	require.NoError(t, w.PutU32(0x2, "flags"))
	require.NoError(t, w.PutU8(2, "event"))
	require.NoError(t, w.PutU32(0x4, "flags"))
	require.NoError(t, w.PutU64(adapterOffset, "offset"))
	require.NoError(t, w.PutBorshOption(true, "data offset"))
	require.NoError(t, w.PutU64(adapterOffset+5, "data offset"))
	require.NoError(t, w.PutBorshOption(false, "data len"))
	buf = append(buf, w.Bytes()...)

	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)

	require.Len(t, reg.Entries, 1)
	require.Len(t, reg.External, 1)
	ext := reg.External[0]
	assert.Equal(t, AuthorityUpdateAuthority, ext.Authority.Kind)
	assert.Equal(t, []LifecycleCheck{{Event: 1, Flags: 2}, {Event: 2, Flags: 4}}, ext.LifecycleChecks)
	assert.Equal(t, adapterOffset, ext.Offset)
	require.NotNil(t, ext.DataOffset)
	assert.Equal(t, adapterOffset+5, *ext.DataOffset)
	assert.Nil(t, ext.DataLen)
}

func TestListPlugins_LegacyRegistryWithoutExternal(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), samplePlugins()[:2])
	buf = buf[:len(buf)-4]

	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)
	assert.Len(t, reg.Entries, 2)
	assert.Empty(t, reg.External)
}

func TestDecodePlugin_KindMismatch(t *testing.T) {
	buf := buildWithPlugins(t, sampleAsset(), samplePlugins())
	_, headerLen, err := DecodeHeader(buf)
	require.NoError(t, err)
	reg, err := ListPlugins(buf, headerLen)
	require.NoError(t, err)

	entry := reg.Entries[0]
	entry.Kind = PluginEdition
	_, err = DecodePlugin(buf, entry)
	assert.ErrorIs(t, err, ErrMalformedRegistry)

	entry.Offset = uint64(len(buf))
	_, err = DecodePlugin(buf, entry)
	assert.ErrorIs(t, err, ErrMalformedRegistry)
}

func TestEncodePlugin_AllKindsRoundTrip(t *testing.T) {
	maxSupply := uint32(5)
	uri := "https://example.com/master.json"
	plugins := []Plugin{
		&Royalties{BasisPoints: 100, Creators: []Creator{}, RuleSet: RuleSet{Kind: RuleSetNone}},
		&FreezeDelegate{Frozen: false},
		&BurnDelegate{},
		&TransferDelegate{},
		&UpdateDelegate{AdditionalDelegates: []solana.PublicKey{testKey(1), testKey(2)}},
		&PermanentFreezeDelegate{Frozen: true},
		&Attributes{AttributeList: []Attribute{}},
		&PermanentTransferDelegate{},
		&PermanentBurnDelegate{},
		&Edition{Number: 12},
		&MasterEdition{MaxSupply: &maxSupply, URI: &uri},
		&AddBlocker{},
		&ImmutableMetadata{},
		&VerifiedCreators{Signatures: []CreatorSignature{{Address: testKey(3), Verified: true}}},
		&Autograph{Signatures: []AutographSignature{{Address: testKey(4), Message: "gm"}}},
		&BubblegumV2{},
		&FreezeExecute{Frozen: true},
		&PermanentFreezeExecute{Frozen: false},
	}

	for _, p := range plugins {
		t.Run(p.Kind().String(), func(t *testing.T) {
			payload, err := EncodePlugin(p)
			require.NoError(t, err)
			buf := append([]byte{0xFF, 0xFF, 0xFF}, payload...)

			got, err := DecodePlugin(buf, PluginEntry{Kind: p.Kind(), Offset: 3})
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}
