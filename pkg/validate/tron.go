package validate

import (
	"encoding/hex"

	"github.com/fbsobreira/gotron-sdk/pkg/address"
)

const (
	tronAddressLength = 21
	tronAddressPrefix = 0x41
	txHashLength      = 32
)

// IsTronAddress reports whether s is a base58check TRON account address (T...).
func IsTronAddress(s string) bool {
	addr, err := address.Base58ToAddress(s)
	if err != nil {
		return false
	}
	return len(addr) == tronAddressLength && addr[0] == tronAddressPrefix
}

// IsTxHash reports whether s is a 32-byte hex transaction id as TRON explorers print it.
func IsTxHash(s string) bool {
	if len(s) != txHashLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
