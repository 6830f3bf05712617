package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-accounting/internal/domain"
)

const (
	alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	usdcx = "0xcaa7349cea390f89641fe306d93591f87595dc1f"
)

type recordedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func cursorOf(t *testing.T, req recordedRequest) string {
	t.Helper()
	where := req.Variables["where"].(map[string]any)
	and := where["and"].([]any)
	last := and[len(and)-1].(map[string]any)
	return last["id_gt"].(string)
}

func newLedgerServer(t *testing.T, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		var data string
		switch {
		case strings.Contains(req.Query, "streamPeriods("):
			switch cursorOf(t, req) {
			case "":
				data = `{"streamPeriods":[
					{"id":"sp-1","flowRate":"385802469135","token":{"id":"0xCAA7349CEA390F89641FE306D93591F87595DC1F","symbol":"USDCx","name":"Super USDC","underlyingAddress":"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359","decimals":18},
					 "sender":{"id":"` + alice + `"},"receiver":{"id":"` + bob + `"},"startedAtTimestamp":"1700000000","startedAtBlockNumber":"500","startedAtEvent":{"transactionHash":"0xs1"},
					 "stoppedAtTimestamp":"1700086400","stoppedAtBlockNumber":"900","stoppedAtEvent":{"transactionHash":"0xe1"},"totalAmountStreamed":"33333333333264000"},
					{"id":"sp-2","flowRate":"1","token":{"id":"` + usdcx + `","symbol":"USDCx","name":"Super USDC","underlyingAddress":"","decimals":18},
					 "sender":{"id":"` + bob + `"},"receiver":{"id":"` + alice + `"},"startedAtTimestamp":"1700000100","startedAtBlockNumber":"501","startedAtEvent":{"transactionHash":"0xs2"},
					 "stoppedAtTimestamp":null,"stoppedAtBlockNumber":null,"stoppedAtEvent":null,"totalAmountStreamed":"0"}
				]}`
			case "sp-2":
				data = `{"streamPeriods":[
					{"id":"sp-3","flowRate":"2","token":{"id":"` + usdcx + `","symbol":"USDCx","name":"Super USDC","underlyingAddress":"","decimals":18},
					 "sender":{"id":"` + alice + `"},"receiver":{"id":"` + bob + `"},"startedAtTimestamp":"1700000200","startedAtBlockNumber":"502","startedAtEvent":{"transactionHash":"0xs3"},
					 "stoppedAtTimestamp":null,"stoppedAtBlockNumber":null,"stoppedAtEvent":null,"totalAmountStreamed":"0"}
				]}`
			default:
				t.Errorf("unexpected cursor %q", cursorOf(t, req))
			}
		case strings.Contains(req.Query, "transferEvents("):
			data = `{"transferEvents":[
				{"id":"tr-1","token":"` + usdcx + `","from":{"id":"` + alice + `"},"to":{"id":"` + bob + `"},"value":"1000000000000000000","timestamp":"1700000500","blockNumber":"600","transactionHash":"0xt1"}
			]}`
		case strings.Contains(req.Query, "tokens("):
			data = `{"tokens":[{"id":"` + usdcx + `","symbol":"USDCx","name":"Super USDC","underlyingAddress":"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359","decimals":18}]}`
		default:
			t.Errorf("unexpected query %s", req.Query)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":` + data + `}`))
	}))
}

func TestClient_Query(t *testing.T) {
	var requests []recordedRequest
	server := newLedgerServer(t, &requests)
	defer server.Close()

	client := NewClient(WithEndpoint(137, server.URL), WithPageSize(2))
	data, err := client.Query(context.Background(), domain.LedgerQuery{
		ChainID:   137,
		Addresses: []string{alice},
		Start:     1700000000,
		End:       1700100000,
	})
	require.NoError(t, err)

	require.Len(t, data.StreamPeriods, 3)
	sp := data.StreamPeriods[0]
	assert.Equal(t, "sp-1", sp.ID)
	assert.Equal(t, usdcx, sp.Token.ID)
	assert.Equal(t, int32(18), sp.Token.Decimals)
	assert.Equal(t, int64(137), sp.ChainID)
	assert.True(t, sp.FlowRate.Equal(decimal.RequireFromString("385802469135")))
	assert.Equal(t, int64(1700000000), sp.StartedAtTimestamp)
	require.NotNil(t, sp.StoppedAtTimestamp)
	assert.Equal(t, int64(1700086400), *sp.StoppedAtTimestamp)
	require.NotNil(t, sp.StoppedAtTxHash)
	assert.Equal(t, "0xe1", *sp.StoppedAtTxHash)
	assert.Nil(t, data.StreamPeriods[1].StoppedAtTimestamp)
	assert.Nil(t, data.StreamPeriods[1].StoppedAtTxHash)
	assert.Equal(t, "sp-3", data.StreamPeriods[2].ID)

	require.Len(t, data.Transfers, 1)
	tr := data.Transfers[0]
	assert.Equal(t, "Super USDC", tr.Token.Name)
	assert.Equal(t, "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", tr.Token.UnderlyingAddress)
	assert.Equal(t, alice, tr.From)
	assert.Equal(t, int64(1700000500), tr.Timestamp)

	// two stream pages, one transfer page, one token page
	require.Len(t, requests, 4)
	assert.Equal(t, float64(2), requests[0].Variables["first"])
}

func TestStreamPeriodFilter_Counterparties(t *testing.T) {
	q := domain.LedgerQuery{Addresses: []string{alice}, Counterparties: []string{bob}, Start: 10, End: 20}

	filter := streamPeriodFilter(q)
	require.Len(t, filter, 3)

	parties := filter[0]["or"].([]map[string]any)
	assert.Equal(t, []string{alice}, parties[0]["sender_in"])
	assert.Equal(t, []string{bob}, parties[0]["receiver_in"])
	assert.Equal(t, []string{bob}, parties[1]["sender_in"])
	assert.Equal(t, []string{alice}, parties[1]["receiver_in"])
	assert.Equal(t, "20", filter[1]["startedAtTimestamp_lte"])
}

func TestClient_UnknownNetwork(t *testing.T) {
	client := NewClient()
	_, err := client.Query(context.Background(), domain.LedgerQuery{ChainID: 5})

	assert.True(t, errors.Is(err, ErrUnknownNetwork))
}

func TestClient_GraphQLErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"errors":[{"message":"indexing error"}]}`))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(1, server.URL), WithRetryDelay(time.Millisecond))
	_, err := client.Query(context.Background(), domain.LedgerQuery{ChainID: 1, Addresses: []string{alice}})

	var gqlErr *GraphQLError
	require.ErrorAs(t, err, &gqlErr)
	assert.Equal(t, []string{"indexing error"}, gqlErr.Messages)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"streamPeriods":[],"transferEvents":[]}}`))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(1, server.URL), WithRetryDelay(time.Millisecond))
	data, err := client.Query(context.Background(), domain.LedgerQuery{ChainID: 1, Addresses: []string{alice}})

	require.NoError(t, err)
	assert.Empty(t, data.StreamPeriods)
	assert.Empty(t, data.Transfers)
	assert.Equal(t, int32(3), attempts.Load())
}
