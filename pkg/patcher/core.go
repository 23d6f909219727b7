package patcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/ledger"
)

func errorsIsAbsent(err error) bool {
	return errors.Is(err, ledger.ErrRecordAbsent)
}

// PluginView is one registry entry with its decoded payload. Err is set
// instead of Plugin when the payload does not decode; other plugins are
// still reported.
type PluginView struct {
	Entry  codec.PluginEntry `json:"entry"`
	Plugin codec.Plugin      `json:"plugin,omitempty"`
	Err    string            `json:"error,omitempty"`
}

// CoreView is a decoded asset or collection.
type CoreView struct {
	Address   solana.PublicKey     `json:"address"`
	Kind      string               `json:"kind"`
	Header    codec.Header         `json:"header"`
	HeaderLen int                  `json:"header_len"`
	Size      int                  `json:"size"`
	Lamports  uint64               `json:"lamports"`
	Owner     solana.PublicKey     `json:"program"`
	Registry  *codec.Registry      `json:"registry"`
	Plugins   []PluginView         `json:"plugins"`
	State     *ledger.AccountState `json:"-"`
}

// Asset returns the header as an asset, or nil for a collection.
func (v *CoreView) Asset() *codec.AssetHeader {
	h, _ := v.Header.(*codec.AssetHeader)
	return h
}

// Collection returns the header as a collection, or nil for an asset.
func (v *CoreView) Collection() *codec.CollectionHeader {
	h, _ := v.Header.(*codec.CollectionHeader)
	return h
}

// InspectCore decodes the header, registry and plugins of a core account.
// A want of KeyUninitialized accepts either kind.
func (p *Patcher) InspectCore(ctx context.Context, key solana.PublicKey, want codec.Key) (*CoreView, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, CoreProgramID)

	header, headerLen, err := codec.DecodeHeader(state.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if want != codec.KeyUninitialized && header.Key() != want {
		return nil, fmt.Errorf("%w: %s is a %s, expected %s", codec.ErrMalformedHeader, key, header.Key(), want)
	}

	registry, err := codec.ListPlugins(state.Data, headerLen)
	if err != nil {
		return nil, fmt.Errorf("plugins of %s: %w", key, err)
	}

	view := &CoreView{
		Address:   key,
		Kind:      header.Key().String(),
		Header:    header,
		HeaderLen: headerLen,
		Size:      len(state.Data),
		Lamports:  state.Lamports,
		Owner:     state.Owner,
		Registry:  registry,
		State:     state,
	}
	for _, entry := range registry.Entries {
		pv := PluginView{Entry: entry}
		plugin, err := codec.DecodePlugin(state.Data, entry)
		if err != nil {
			pv.Err = err.Error()
			p.logger.Warn("plugin does not decode", "address", key, "kind", entry.Kind, "error", err)
		} else {
			pv.Plugin = plugin
		}
		view.Plugins = append(view.Plugins, pv)
	}
	return view, nil
}

// PatchCore applies m to the header of a core account and writes it back.
// The extension region is carried over byte for byte.
func (p *Patcher) PatchCore(ctx context.Context, key solana.PublicKey, m codec.HeaderMutation) (*Result, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, CoreProgramID)

	patched, err := codec.PatchHeader(state.Data, m)
	if err != nil {
		return nil, fmt.Errorf("patch %s of %s: %w", m.Field(), key, err)
	}
	return p.write(ctx, key, state, state.WithData(patched.Data), "set "+m.Field())
}

// SetAssetOwner replaces the owner of an asset.
func (p *Patcher) SetAssetOwner(ctx context.Context, key, owner solana.PublicKey) (*Result, error) {
	return p.PatchCore(ctx, key, codec.SetOwner{Owner: owner})
}

// SetAssetAuthority points the update authority of an asset at an address,
// or at a collection when collection is true.
func (p *Patcher) SetAssetAuthority(ctx context.Context, key, authority solana.PublicKey, collection bool) (*Result, error) {
	kind := codec.UpdateAuthorityAddress
	if collection {
		kind = codec.UpdateAuthorityCollection
	}
	return p.PatchCore(ctx, key, codec.SetUpdateAuthority{
		Authority: codec.UpdateAuthority{Kind: kind, Address: authority},
	})
}

// SetCollectionAuthority replaces the update authority of a collection.
func (p *Patcher) SetCollectionAuthority(ctx context.Context, key, authority solana.PublicKey) (*Result, error) {
	return p.PatchCore(ctx, key, codec.SetUpdateAuthority{
		Authority: codec.UpdateAuthority{Kind: codec.UpdateAuthorityAddress, Address: authority},
	})
}
