// Package resolver maps network tokens to CoinGecko coin ids.
package resolver

import (
	"stream-accounting/internal/coingecko"
	"stream-accounting/internal/domain"
)

// HardcodedCoinID returns the coin id registered for a Super Token address on a chain.
func HardcodedCoinID(chainID int64, address string) (string, bool) {
	id, ok := superTokenCoinIDs[chainID][domain.NormalizeAddress(address)]
	return id, ok
}

// Resolver resolves tokens against the hardcoded table and a coin list.
type Resolver struct {
	// platform id -> lowercase contract address -> coin id
	byPlatform map[string]map[string]string
}

// New indexes a coin list. When several coins list the same contract, the first wins.
func New(coins []coingecko.Coin) *Resolver {
	r := &Resolver{byPlatform: make(map[string]map[string]string)}
	for _, coin := range coins {
		for platform, addr := range coin.Platforms {
			addr = domain.NormalizeAddress(addr)
			if addr == "" {
				continue
			}
			byAddr, ok := r.byPlatform[platform]
			if !ok {
				byAddr = make(map[string]string)
				r.byPlatform[platform] = byAddr
			}
			if _, taken := byAddr[addr]; !taken {
				byAddr[addr] = coin.ID
			}
		}
	}
	return r
}

// Resolve returns the coin id pricing a token. The hardcoded table is consulted first, then
// the underlying token address is matched against the coin list platform of the token's
// network. Tokens on unknown networks resolve only through the hardcoded table.
func (r *Resolver) Resolve(t domain.NetworkToken) (string, bool) {
	if id, ok := HardcodedCoinID(t.ChainID, t.Token); ok {
		return id, true
	}
	if t.UnderlyingAddress == "" {
		return "", false
	}

	network, ok := domain.NetworkByChainID(t.ChainID)
	if !ok {
		return "", false
	}
	id, ok := r.byPlatform[network.CoingeckoPlatform][domain.NormalizeAddress(t.UnderlyingAddress)]
	return id, ok
}
