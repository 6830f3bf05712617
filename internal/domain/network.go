package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// Network describes a supported chain.
type Network struct {
	ChainID           int64  `json:"chainId"`
	Name              string `json:"name"`
	CoingeckoPlatform string `json:"coingeckoPlatform"`
	SubgraphURL       string `json:"subgraphUrl"`
}

const subgraphEndpoint = "https://subgraph-endpoints.superfluid.dev/%s/protocol-v1"

func network(chainID int64, name, platform string) Network {
	return Network{
		ChainID:           chainID,
		Name:              name,
		CoingeckoPlatform: platform,
		SubgraphURL:       fmt.Sprintf(subgraphEndpoint, name),
	}
}

var networks = map[int64]Network{
	1:         network(1, "eth-mainnet", "ethereum"),
	10:        network(10, "optimism-mainnet", "optimistic-ethereum"),
	56:        network(56, "bsc-mainnet", "binance-smart-chain"),
	100:       network(100, "xdai-mainnet", "xdai"),
	137:       network(137, "polygon-mainnet", "polygon-pos"),
	8453:      network(8453, "base-mainnet", "base"),
	42161:     network(42161, "arbitrum-one", "arbitrum-one"),
	42220:     network(42220, "celo-mainnet", "celo"),
	43114:     network(43114, "avalanche-c", "avalanche"),
	534352:    network(534352, "scroll-mainnet", "scroll"),
	666666666: network(666666666, "degenchain", "degen"),
}

// NetworkByChainID returns the network for a chain id.
func NetworkByChainID(chainID int64) (Network, bool) {
	n, ok := networks[chainID]
	return n, ok
}

// Networks returns all supported networks ordered by chain id.
func Networks() []Network {
	list := make([]Network, 0, len(networks))
	for _, n := range networks {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ChainID < list[j].ChainID })
	return list
}

func tokenKey(chainID int64, token string) string {
	return strconv.FormatInt(chainID, 10) + "-" + NormalizeAddress(token)
}
