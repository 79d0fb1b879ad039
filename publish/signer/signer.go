// Package signer builds the account that submits deployment transactions,
// from either a BIP-39 mnemonic or a raw private key.
package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

var (
	ErrNoSource           = errors.New("either a mnemonic or a private key is required")
	ErrConflictingSources = errors.New("mnemonic and private key are mutually exclusive")
)

// Source is where the signing key comes from. Mnemonic and PrivateKey are
// the only implementations.
type Source interface {
	privateKey() (*ecdsa.PrivateKey, error)
}

type (
	// MnemonicOptions select the account derived from a mnemonic. Path, when
	// set, takes precedence over the index fields, which otherwise fill in
	// m/44'/60'/AccountIndex'/ChangeIndex/AddressIndex.
	MnemonicOptions struct {
		Path         string
		AccountIndex uint32
		ChangeIndex  uint32
		AddressIndex uint32
		Passphrase   string
	}

	Mnemonic struct {
		Phrase  string
		Options MnemonicOptions
	}

	PrivateKey struct {
		Hex string
	}

	Signer struct {
		key     *ecdsa.PrivateKey
		address common.Address
	}
)

func (o MnemonicOptions) DerivationPath() (accounts.DerivationPath, error) {
	if strings.TrimSpace(o.Path) != "" {
		path, err := accounts.ParseDerivationPath(strings.TrimSpace(o.Path))
		if err != nil {
			return nil, fmt.Errorf("parse derivation path: %w", err)
		}
		return path, nil
	}
	return accounts.DerivationPath{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + o.AccountIndex,
		o.ChangeIndex,
		o.AddressIndex,
	}, nil
}

func (m Mnemonic) privateKey() (*ecdsa.PrivateKey, error) {
	phrase := strings.Join(strings.Fields(m.Phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, errors.New("invalid mnemonic")
	}
	path, err := m.Options.DerivationPath()
	if err != nil {
		return nil, err
	}

	key, err := hdkeychain.NewMaster(bip39.NewSeed(phrase, m.Options.Passphrase), &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	for _, n := range path {
		key, err = key.Derive(n)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("derive private key: %w", err)
	}
	return priv.ToECDSA(), nil
}

func (p PrivateKey) privateKey() (*ecdsa.PrivateKey, error) {
	v := strings.TrimPrefix(strings.TrimSpace(p.Hex), "0x")
	if len(v) != 64 {
		return nil, errors.New("parse private key: want 32 bytes of hex")
	}
	key, err := crypto.HexToECDSA(v)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func New(src Source) (*Signer, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	key, err := src.privateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Parse picks the source from two optional inputs, exactly one of which must
// be set.
func Parse(mnemonic, privateKey string, opts MnemonicOptions) (*Signer, error) {
	hasMnemonic := strings.TrimSpace(mnemonic) != ""
	hasKey := strings.TrimSpace(privateKey) != ""

	switch {
	case hasMnemonic && hasKey:
		return nil, ErrConflictingSources
	case hasMnemonic:
		return New(Mnemonic{Phrase: mnemonic, Options: opts})
	case hasKey:
		return New(PrivateKey{Hex: privateKey})
	default:
		return nil, ErrNoSource
	}
}

func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) SignTx(tx *types.Transaction, signer types.Signer) (*types.Transaction, error) {
	return types.SignTx(tx, signer, s.key)
}

func (s *Signer) String() string {
	return "signer(" + s.address.Hex() + ")"
}
