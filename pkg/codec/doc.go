// Package codec decodes, patches and re-encodes on-chain account records.
//
// The package understands a closed set of record kinds: Metaplex Core asset
// and collection headers, the Core plugin registry and plugin payloads, the
// Token Metadata token record, and the SPL token account. Each kind has its
// own codec; there is no generic schema layer.
//
// # Buffer Layout
//
// A core asset or collection account is split in two regions:
//
//	[0, headerLen)       header region, modelled by DecodeHeader
//	[headerLen, len)     extension region: plugin header, registry, payloads
//
// headerLen depends on the name and uri lengths and on optional fields, so it
// is reported by the decoder rather than being a constant. The extension
// region stores absolute offsets into the buffer, which is why the header
// must never change length when it is patched.
//
// # Primitives
//
// All scalars are little-endian. A Reader is a bounds-checked (buffer,
// offset) pair owned by a single decode call. Strings are prefixed with a
// u32 byte length and the declared length is checked against the remaining
// buffer before it is used.
//
// Two optional encodings exist and are never mixed within one record:
//
//	borsh option     [tag(1)][payload if tag == 1]           headers, plugins
//	fixed slot       [tag(TagWidth)][payload or zeros(width)] fixed records
//
// SlotTag8 is used by TokenRecord and SlotTag32 (COption) by TokenAccount.
//
// # Fixed Records
//
//	TokenRecord    80 bytes   key, bump, state, rule_set_revision, delegate,
//	                          delegate_role, locked_transfer
//	TokenAccount  165 bytes   mint, owner, amount, delegate, state, is_native,
//	                          delegated_amount, close_authority
//
// Encode always returns the full width; an absent optional field leaves its
// whole slot zero.
//
// # Plugin Registry
//
//	[PluginHeaderV1 key(1)][registry offset(8)]       at headerLen
//	[PluginRegistryV1 key(1)][count(4)][entries...]   at registry offset
//	[external count(4)][external entries...]
//
// ListPlugins returns the entries; DecodePlugin decodes one payload from the
// entry's absolute offset using a fresh Reader.
//
// # Patching
//
// PatchHeader decodes the header, applies a HeaderMutation, re-encodes it and
// splices the result over [0, headerLen). If the new header has a different
// length the patch fails with ErrLengthMismatch. PatchTokenRecord and
// PatchTokenAccount do the same for fixed records, where every field has a
// reserved slot and no length change is possible.
//
// # Error Handling
//
// Errors wrap one of the package sentinels and can be matched with errors.Is:
//   - ErrMalformedHeader: wrong key, unknown enum tag, strings past the end
//   - ErrTruncatedRecord: fixed record shorter than its width
//   - ErrMalformedRecord: invalid enum or presence tag in a fixed record
//   - ErrMalformedRegistry: plugin header, registry or payload out of bounds
//   - ErrLengthMismatch: patched header changed length
//   - ErrUnsupportedMutation: mutation of a variable-width or foreign field
//   - ErrFieldTooWide: a value does not fit its reserved slot
//   - ErrSnapshotCorrupt: snapshot envelope failed its CRC32 check
//
// # Thread Safety
//
// Codecs hold no state. Decoded values are plain structs owned by the caller.
package codec
