package domain

import "strings"

// ZeroAddress is the EVM zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NormalizeAddress lowercases and trims an address.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// AddressSet is a case-insensitive set of addresses.
type AddressSet map[string]struct{}

// NewAddressSet builds a set from the given addresses.
func NewAddressSet(addrs ...string) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		if a = NormalizeAddress(a); a != "" {
			s[a] = struct{}{}
		}
	}
	return s
}

// Contains reports whether addr is in the set.
func (s AddressSet) Contains(addr string) bool {
	_, ok := s[NormalizeAddress(addr)]
	return ok
}
