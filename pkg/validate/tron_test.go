package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTronAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"USDT contract address", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", true},
		{"Broken checksum", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u", false},
		{"Ethereum address", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", false},
		{"Empty", "", false},
		{"Not base58", "T0OIl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTronAddress(tt.address))
		})
	}
}

func TestIsTxHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"Valid lower case", "8f1a3c6e5b9d2f4a7c0e1b3d5f7a9c2e4b6d8f0a1c3e5b7d9f2a4c6e8b0d1f3a", true},
		{"Valid upper case", "8F1A3C6E5B9D2F4A7C0E1B3D5F7A9C2E4B6D8F0A1C3E5B7D9F2A4C6E8B0D1F3A", true},
		{"Prefixed with 0x", "0x8f1a3c6e5b9d2f4a7c0e1b3d5f7a9c2e4b6d8f0a1c3e5b7d9f2a4c6e8b0d1f", false},
		{"Too short", "8f1a3c", false},
		{"Non hex", "zz1a3c6e5b9d2f4a7c0e1b3d5f7a9c2e4b6d8f0a1c3e5b7d9f2a4c6e8b0d1f3a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTxHash(tt.hash))
		})
	}
}
