package patcher

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ssargent/surfpatch/pkg/codec"
)

// Token2022ProgramID may own token accounts alongside the original token
// program.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// spliceFixed keeps anything stored past the fixed width of a record.
func spliceFixed(encoded, original []byte, width int) []byte {
	if len(original) <= width {
		return encoded
	}
	out := make([]byte, 0, len(original))
	out = append(out, encoded...)
	return append(out, original[width:]...)
}

// InspectTokenRecord decodes the token record at key.
func (p *Patcher) InspectTokenRecord(ctx context.Context, key solana.PublicKey) (*codec.TokenRecord, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, solana.TokenMetadataProgramID)
	tr, err := codec.DecodeTokenRecord(state.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return tr, nil
}

// PatchTokenRecord applies mutate to the token record at key.
func (p *Patcher) PatchTokenRecord(ctx context.Context, key solana.PublicKey, mutation string, mutate func(*codec.TokenRecord) error) (*Result, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, solana.TokenMetadataProgramID)

	encoded, err := codec.PatchTokenRecord(state.Data, mutate)
	if err != nil {
		return nil, fmt.Errorf("patch %s of %s: %w", mutation, key, err)
	}
	data := spliceFixed(encoded, state.Data, codec.TokenRecordWidth)
	return p.write(ctx, key, state, state.WithData(data), mutation)
}

// SetTokenRecordState sets the lock state of a token record. With
// clearDelegate the delegate, its role and any locked transfer are removed.
func (p *Patcher) SetTokenRecordState(ctx context.Context, key solana.PublicKey, ts codec.TokenState, clearDelegate bool) (*Result, error) {
	mutation := "set state " + ts.String()
	if clearDelegate {
		mutation += " clear delegate"
	}
	return p.PatchTokenRecord(ctx, key, mutation, func(tr *codec.TokenRecord) error {
		tr.State = ts
		if clearDelegate {
			tr.Delegate = nil
			tr.DelegateRole = nil
			tr.LockedTransfer = nil
		}
		return nil
	})
}

// InspectTokenAccount decodes the token account at key.
func (p *Patcher) InspectTokenAccount(ctx context.Context, key solana.PublicKey) (*codec.TokenAccount, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, solana.TokenProgramID, Token2022ProgramID)
	ta, err := codec.DecodeTokenAccount(state.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return ta, nil
}

// PatchTokenAccount applies mutate to the token account at key. Extension
// bytes past the base layout are kept.
func (p *Patcher) PatchTokenAccount(ctx context.Context, key solana.PublicKey, mutation string, mutate func(*codec.TokenAccount) error) (*Result, error) {
	state, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	p.checkOwner(key, state, solana.TokenProgramID, Token2022ProgramID)

	encoded, err := codec.PatchTokenAccount(state.Data, mutate)
	if err != nil {
		return nil, fmt.Errorf("patch %s of %s: %w", mutation, key, err)
	}
	data := spliceFixed(encoded, state.Data, codec.TokenAccountWidth)
	return p.write(ctx, key, state, state.WithData(data), mutation)
}

// SetTokenAccountOwner hands the token account to a new wallet.
func (p *Patcher) SetTokenAccountOwner(ctx context.Context, key, owner solana.PublicKey) (*Result, error) {
	return p.PatchTokenAccount(ctx, key, "set owner", func(ta *codec.TokenAccount) error {
		ta.Owner = owner
		return nil
	})
}

// SetTokenAccountAmount overwrites the balance. A delegated amount above the
// new balance is capped.
func (p *Patcher) SetTokenAccountAmount(ctx context.Context, key solana.PublicKey, amount uint64) (*Result, error) {
	return p.PatchTokenAccount(ctx, key, "set amount", func(ta *codec.TokenAccount) error {
		ta.Amount = amount
		if ta.DelegatedAmount > amount {
			ta.DelegatedAmount = amount
		}
		return nil
	})
}

// SetTokenAccountState freezes or thaws a token account.
func (p *Patcher) SetTokenAccountState(ctx context.Context, key solana.PublicKey, st codec.AccountState) (*Result, error) {
	return p.PatchTokenAccount(ctx, key, "set state "+st.String(), func(ta *codec.TokenAccount) error {
		if st == codec.AccountStateUninitialized {
			return fmt.Errorf("%w: a token account cannot be set back to uninitialized", codec.ErrUnsupportedMutation)
		}
		ta.State = st
		return nil
	})
}
