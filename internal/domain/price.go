package domain

import "github.com/shopspring/decimal"

// TimespanPrice is a price quote valid from Start until superseded by the next quote.
type TimespanPrice struct {
	Start int64           `json:"start"` // unix seconds
	Price decimal.Decimal `json:"price"`
}

// NetworkToken identifies a token on a chain for price resolution.
type NetworkToken struct {
	ChainID           int64
	Token             string // lowercase token address
	UnderlyingAddress string // lowercase, empty when the token wraps nothing
}

// Key returns the chain-scoped identity of the token.
func (t NetworkToken) Key() string {
	return tokenKey(t.ChainID, t.Token)
}

// TokenPrices is the price series fetched for one network token.
type TokenPrices struct {
	NetworkToken
	CoinID string
	Prices []TimespanPrice
}

// PriceQuote is an archived provider quote.
// Corresponds to price_quotes table in ClickHouse.
type PriceQuote struct {
	CoinID    string
	Currency  string // lowercase provider currency code
	Timestamp int64  // unix seconds
	Price     decimal.Decimal
}

// UniqueNetworkTokens returns the distinct tokens seen across stream periods and transfers,
// in first-seen order. The zero address is not a valid underlying token.
func UniqueNetworkTokens(data []*LedgerData) []NetworkToken {
	seen := make(map[string]struct{})
	var tokens []NetworkToken

	add := func(chainID int64, t Token) {
		nt := NetworkToken{
			ChainID:           chainID,
			Token:             NormalizeAddress(t.ID),
			UnderlyingAddress: NormalizeAddress(t.UnderlyingAddress),
		}
		if nt.UnderlyingAddress == ZeroAddress {
			nt.UnderlyingAddress = ""
		}
		if _, ok := seen[nt.Key()]; ok {
			return
		}
		seen[nt.Key()] = struct{}{}
		tokens = append(tokens, nt)
	}

	for _, d := range data {
		if d == nil {
			continue
		}
		for _, p := range d.StreamPeriods {
			add(p.ChainID, p.Token)
		}
		for _, t := range d.Transfers {
			add(t.ChainID, t.Token)
		}
	}
	return tokens
}

// PriceIndex maps (chain, token) to its price series.
type PriceIndex map[string][]TimespanPrice

// NewPriceIndex indexes fetched token prices.
func NewPriceIndex(prices []TokenPrices) PriceIndex {
	idx := make(PriceIndex, len(prices))
	for _, p := range prices {
		idx[p.Key()] = p.Prices
	}
	return idx
}

// Lookup returns the series for a token, or nil when none was fetched.
func (idx PriceIndex) Lookup(chainID int64, token string) []TimespanPrice {
	return idx[tokenKey(chainID, token)]
}
