package safeproxyfactory

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	proxy     = common.HexToAddress("0xf8eCa6D4c012D6513f8F2C7350775C177573AC74")
	singleton = common.HexToAddress("0x3E5c63644E683549055b9Be8653de26E0B4CD36E")
	topic     = common.HexToHash("0x4f51faf6c4561ff95f067657e43439f0f856d97c04d9ec9070a6199ad418e235")
)

func proxyCreationLog(emitter common.Address) *types.Log {
	return &types.Log{
		Address: emitter,
		Topics:  []common.Hash{topic},
		Data:    append(common.LeftPadBytes(proxy.Bytes(), 32), common.LeftPadBytes(singleton.Bytes(), 32)...),
	}
}

func TestEncodeCreateProxyWithNonce(t *testing.T) {
	input, err := EncodeCreateProxyWithNonce(CreateArgs{
		Singleton:   singleton,
		Initializer: []byte{0xb6, 0x3e, 0x80, 0x0d},
		SaltNonce:   big.NewInt(7),
	})
	if err != nil {
		t.Fatalf("EncodeCreateProxyWithNonce failed: %v", err)
	}

	if !bytes.HasPrefix(input, []byte{0x16, 0x88, 0xf0, 0xb9}) {
		t.Errorf("selector = %x, want 1688f0b9", input[:4])
	}
	// selector, 3 head words, bytes length word, one padded data word
	if len(input) != 4+5*32 {
		t.Errorf("len(input) = %d, want %d", len(input), 4+5*32)
	}
	if got := new(big.Int).SetBytes(input[4+64 : 4+96]); got.Cmp(big.NewInt(7)) != 0 {
		t.Errorf("salt nonce word = %s, want 7", got)
	}
}

func TestDecodeCreateProxyWithNonce(t *testing.T) {
	got, err := DecodeCreateProxyWithNonce(common.LeftPadBytes(proxy.Bytes(), 32))
	if err != nil {
		t.Fatalf("DecodeCreateProxyWithNonce failed: %v", err)
	}
	if got != proxy {
		t.Errorf("proxy = %s, want %s", got.Hex(), proxy.Hex())
	}
}

func TestDecodeCreateProxyWithNonceEmpty(t *testing.T) {
	if _, err := DecodeCreateProxyWithNonce(nil); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestProxyAddressFromReceipt(t *testing.T) {
	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: singleton, Topics: []common.Hash{{0x01}}},
		proxyCreationLog(Address),
	}}

	got, err := ProxyAddressFromReceipt(receipt)
	if err != nil {
		t.Fatalf("ProxyAddressFromReceipt failed: %v", err)
	}
	if got != proxy {
		t.Errorf("proxy = %s, want %s", got.Hex(), proxy.Hex())
	}
}

func TestProxyAddressFromReceiptIgnoresOtherEmitters(t *testing.T) {
	receipt := &types.Receipt{Logs: []*types.Log{proxyCreationLog(singleton)}}

	if _, err := ProxyAddressFromReceipt(receipt); !errors.Is(err, ErrNoProxyCreation) {
		t.Errorf("err = %v, want ErrNoProxyCreation", err)
	}
}
