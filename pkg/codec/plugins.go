package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PluginKind is the tag shared by a registry entry and its plugin payload.
type PluginKind uint8

const (
	PluginRoyalties                 PluginKind = 0
	PluginFreezeDelegate            PluginKind = 1
	PluginBurnDelegate              PluginKind = 2
	PluginTransferDelegate          PluginKind = 3
	PluginUpdateDelegate            PluginKind = 4
	PluginPermanentFreezeDelegate   PluginKind = 5
	PluginAttributes                PluginKind = 6
	PluginPermanentTransferDelegate PluginKind = 7
	PluginPermanentBurnDelegate     PluginKind = 8
	PluginEdition                   PluginKind = 9
	PluginMasterEdition             PluginKind = 10
	PluginAddBlocker                PluginKind = 11
	PluginImmutableMetadata         PluginKind = 12
	PluginVerifiedCreators          PluginKind = 13
	PluginAutograph                 PluginKind = 14
	PluginBubblegumV2               PluginKind = 15
	PluginFreezeExecute             PluginKind = 16
	PluginPermanentFreezeExecute    PluginKind = 17
)

var pluginKindNames = [...]string{
	"Royalties",
	"FreezeDelegate",
	"BurnDelegate",
	"TransferDelegate",
	"UpdateDelegate",
	"PermanentFreezeDelegate",
	"Attributes",
	"PermanentTransferDelegate",
	"PermanentBurnDelegate",
	"Edition",
	"MasterEdition",
	"AddBlocker",
	"ImmutableMetadata",
	"VerifiedCreators",
	"Autograph",
	"BubblegumV2",
	"FreezeExecute",
	"PermanentFreezeExecute",
}

func (k PluginKind) String() string {
	if int(k) < len(pluginKindNames) {
		return pluginKindNames[k]
	}
	return fmt.Sprintf("PluginKind(%d)", uint8(k))
}

// MarshalText renders the kind by name in JSON output.
func (k PluginKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AuthorityKind is the tag of a plugin authority.
type AuthorityKind uint8

const (
	AuthorityNone            AuthorityKind = 0
	AuthorityOwner           AuthorityKind = 1
	AuthorityUpdateAuthority AuthorityKind = 2
	AuthorityAddress         AuthorityKind = 3
)

func (k AuthorityKind) String() string {
	switch k {
	case AuthorityNone:
		return "None"
	case AuthorityOwner:
		return "Owner"
	case AuthorityUpdateAuthority:
		return "UpdateAuthority"
	case AuthorityAddress:
		return "Address"
	}
	return fmt.Sprintf("Authority(%d)", uint8(k))
}

// Authority that may update or remove a plugin. Address is only set for
// AuthorityAddress.
type Authority struct {
	Kind    AuthorityKind     `json:"kind"`
	Address *solana.PublicKey `json:"address,omitempty"`
}

// PluginEntry is one record of the plugin registry. Offset is an absolute
// index into the account buffer where the plugin payload starts.
type PluginEntry struct {
	Kind      PluginKind `json:"kind"`
	Authority Authority  `json:"authority"`
	Offset    uint64     `json:"offset"`
}

// LifecycleCheck pairs a hookable lifecycle event with its check flags.
type LifecycleCheck struct {
	Event uint8  `json:"event"`
	Flags uint32 `json:"flags"`
}

// ExternalEntry is one record of the external plugin adapter registry.
// Adapter payloads are listed but not decoded.
type ExternalEntry struct {
	Kind            uint8            `json:"kind"`
	Authority       Authority        `json:"authority"`
	LifecycleChecks []LifecycleCheck `json:"lifecycle_checks,omitempty"`
	Offset          uint64           `json:"offset"`
	DataOffset      *uint64          `json:"data_offset,omitempty"`
	DataLen         *uint64          `json:"data_len,omitempty"`
}

// Registry is the decoded plugin registry of an asset or collection.
type Registry struct {
	HeaderOffset   int             `json:"header_offset"`
	RegistryOffset uint64          `json:"registry_offset"`
	Entries        []PluginEntry   `json:"entries"`
	External       []ExternalEntry `json:"external,omitempty"`
}

// Smallest encodings, used to reject impossible counts before decoding.
const (
	minPluginEntrySize   = 1 + 1 + 8
	minExternalEntrySize = 1 + 1 + 1 + 8 + 1 + 1
	minLifecycleSize     = 1 + 4
)

// ListPlugins walks the plugin header and registry that follow the header
// region. A buffer that ends at headerLen has no plugins.
func ListPlugins(buf []byte, headerLen int) (*Registry, error) {
	if headerLen < 0 || headerLen > len(buf) {
		return nil, fmt.Errorf("%w: header length %d outside buffer of %d bytes", ErrMalformedRegistry, headerLen, len(buf))
	}
	reg := &Registry{HeaderOffset: headerLen}
	if headerLen == len(buf) {
		return reg, nil
	}

	r := NewReader(buf, headerLen, ErrMalformedRegistry)
	key, err := r.U8("plugin header key")
	if err != nil {
		return nil, err
	}
	if Key(key) != KeyPluginHeaderV1 {
		return nil, fmt.Errorf("%w: plugin header key is %s", ErrMalformedRegistry, Key(key))
	}
	if reg.RegistryOffset, err = r.U64("plugin registry offset"); err != nil {
		return nil, err
	}
	if reg.RegistryOffset >= uint64(len(buf)) {
		return nil, fmt.Errorf("%w: registry offset %d outside buffer of %d bytes", ErrMalformedRegistry, reg.RegistryOffset, len(buf))
	}

	r = NewReader(buf, int(reg.RegistryOffset), ErrMalformedRegistry)
	if key, err = r.U8("plugin registry key"); err != nil {
		return nil, err
	}
	if Key(key) != KeyPluginRegistry {
		return nil, fmt.Errorf("%w: plugin registry key is %s", ErrMalformedRegistry, Key(key))
	}

	n, err := r.Count("registry", minPluginEntrySize)
	if err != nil {
		return nil, err
	}
	reg.Entries = make([]PluginEntry, 0, n)
	for i := 0; i < n; i++ {
		e, err := readPluginEntry(r, len(buf))
		if err != nil {
			return nil, fmt.Errorf("registry entry %d: %w", i, err)
		}
		reg.Entries = append(reg.Entries, e)
	}

	// Accounts written before external adapters existed end here.
	if r.Remaining() == 0 {
		return reg, nil
	}
	n, err = r.Count("external registry", minExternalEntrySize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		e, err := readExternalEntry(r, len(buf))
		if err != nil {
			return nil, fmt.Errorf("external registry entry %d: %w", i, err)
		}
		reg.External = append(reg.External, e)
	}
	return reg, nil
}

func readAuthority(r *Reader) (Authority, error) {
	var a Authority
	tag, err := r.U8("authority tag")
	if err != nil {
		return a, err
	}
	a.Kind = AuthorityKind(tag)
	switch a.Kind {
	case AuthorityNone, AuthorityOwner, AuthorityUpdateAuthority:
		return a, nil
	case AuthorityAddress:
		pk, err := r.PublicKey("authority address")
		if err != nil {
			return a, err
		}
		a.Address = &pk
		return a, nil
	}
	return a, fmt.Errorf("%w: unknown authority tag %d", ErrMalformedRegistry, tag)
}

func checkOffset(off uint64, bufLen int, what string) error {
	if off >= uint64(bufLen) {
		return fmt.Errorf("%w: %s offset %d outside buffer of %d bytes", ErrMalformedRegistry, what, off, bufLen)
	}
	return nil
}

func readPluginEntry(r *Reader, bufLen int) (PluginEntry, error) {
	var e PluginEntry
	kind, err := r.U8("plugin type")
	if err != nil {
		return e, err
	}
	e.Kind = PluginKind(kind)
	if e.Authority, err = readAuthority(r); err != nil {
		return e, err
	}
	if e.Offset, err = r.U64("plugin offset"); err != nil {
		return e, err
	}
	return e, checkOffset(e.Offset, bufLen, "plugin")
}

func readExternalEntry(r *Reader, bufLen int) (ExternalEntry, error) {
	var e ExternalEntry
	var err error
	if e.Kind, err = r.U8("adapter type"); err != nil {
		return e, err
	}
	if e.Authority, err = readAuthority(r); err != nil {
		return e, err
	}
	present, err := r.BorshOption("lifecycle checks")
	if err != nil {
		return e, err
	}
	if present {
		n, err := r.Count("lifecycle checks", minLifecycleSize)
		if err != nil {
			return e, err
		}
		e.LifecycleChecks = make([]LifecycleCheck, 0, n)
		for i := 0; i < n; i++ {
			var c LifecycleCheck
			if c.Event, err = r.U8("lifecycle event"); err != nil {
				return e, err
			}
			if c.Flags, err = r.U32("check flags"); err != nil {
				return e, err
			}
			e.LifecycleChecks = append(e.LifecycleChecks, c)
		}
	}
	if e.Offset, err = r.U64("adapter offset"); err != nil {
		return e, err
	}
	if err := checkOffset(e.Offset, bufLen, "adapter"); err != nil {
		return e, err
	}
	if e.DataOffset, err = readOptionalU64(r, "data offset"); err != nil {
		return e, err
	}
	if e.DataLen, err = readOptionalU64(r, "data length"); err != nil {
		return e, err
	}
	return e, nil
}

func readOptionalU64(r *Reader, what string) (*uint64, error) {
	present, err := r.BorshOption(what)
	if err != nil || !present {
		return nil, err
	}
	v, err := r.U64(what)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
