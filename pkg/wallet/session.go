package wallet

import (
	"encoding/hex"
	"strings"
)

// Kind identifies a wallet provider family.
type Kind string

const (
	KindNone     Kind = ""
	KindMetaMask Kind = "metamask"
	KindPhantom  Kind = "phantom"
)

// ParseKind normalizes a wallet kind string.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metamask", "keystore":
		// The local keystore provider stands in for the MetaMask extension.
		return KindMetaMask
	case "phantom":
		return KindPhantom
	default:
		return KindNone
	}
}

// Session holds the connection identity for the single active wallet.
// Exactly one Session is live per process; a zero Session means disconnected.
type Session struct {
	// ID tags the session identity. Every connect, account change and
	// network change rotates it; in-flight operation results whose tag no
	// longer matches are discarded.
	ID        string
	Account   string
	Kind      Kind
	NetworkID int64
	Connected bool
}

// IsAccount reports whether the session account equals addr.
// Ledger addresses are not case-sensitive.
func (s Session) IsAccount(addr string) bool {
	return s.Connected && EqualAddresses(s.Account, addr)
}

// EqualAddresses compares two ledger addresses case-insensitively.
func EqualAddresses(a, b string) bool {
	return normalizeAddress(a) == normalizeAddress(b) && normalizeAddress(a) != ""
}

// ValidAddress reports whether a wallet address is a well-formed 20-byte
// hex address.
func ValidAddress(address string) bool {
	addr := normalizeAddress(address)
	if len(addr) != 40 {
		return false
	}
	_, err := hex.DecodeString(addr)
	return err == nil
}

// FormatAddress formats a wallet address consistently (lowercase, 0x prefix).
func FormatAddress(address string) string {
	addr := normalizeAddress(address)
	if addr == "" {
		return ""
	}
	return "0x" + addr
}

func normalizeAddress(address string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(address)), "0x")
}
