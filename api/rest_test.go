package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"kitty-services/api"
	"kitty-services/db"
	"kitty-services/kitties"
	"kitty-services/kittylog"
	"kitty-services/types"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	kittylog.New("testing", "ErrorLevel")
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := db.Open(db.Opts{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := kitties.NewEngine(store, kitties.NewSeededSource([32]byte{1}), kitties.NewLogSink(kittylog.L), kittylog.L)
	a := api.NewAPI(kittylog.L, engine, store, &api.Config{
		Addr:        ":0",
		Environment: "testing",
	})

	server := httptest.NewServer(a.Routes)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func newAccount(t *testing.T) types.AccountID {
	t.Helper()
	u, err := uuid.NewV4()
	require.NoError(t, err)
	return types.AccountID(u)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/health_check")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMarketplaceEndToEnd(t *testing.T) {
	server := newTestServer(t)
	seller := newAccount(t)
	buyer := newAccount(t)

	// Seller mints a kitty.
	kitty := &types.Kitty{}
	resp := doJSON(t, http.MethodPost, server.URL+"/api/kitties", api.KittyCreateRequest{Owner: seller}, kitty)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, seller, kitty.Owner)

	// Buying before listing fails.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/kitties/%d/buy", server.URL, kitty.ID), api.KittyBuyRequest{Caller: buyer}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Fund the buyer through the dev faucet.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/accounts/%s/faucet", server.URL, buyer), api.FaucetRequest{Amount: decimal.NewFromInt(200)}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Seller lists at 100.
	price := decimal.NewFromInt(100)
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/kitties/%d/price", server.URL, kitty.ID), api.KittyUpdatePriceRequest{Caller: seller, Price: &price}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listings := []*db.ListingEntry{}
	resp = doJSON(t, http.MethodGet, server.URL+"/api/listings", nil, &listings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listings, 1)
	require.Equal(t, kitty.ID, listings[0].KittyID)

	// Buyer completes the purchase.
	bought := &types.Kitty{}
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/kitties/%d/buy", server.URL, kitty.ID), api.KittyBuyRequest{Caller: buyer}, bought)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, buyer, bought.Owner)

	// Seller was paid, buyer owns the kitty, listing gone.
	balance := map[string]decimal.Decimal{}
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/accounts/%s/balance", server.URL, seller), nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, balance["balance"].Equal(decimal.NewFromInt(100)))

	held := []*types.Kitty{}
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/accounts/%s/kitties", server.URL, buyer), nil, &held)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, held, 1)

	listings = []*db.ListingEntry{}
	resp = doJSON(t, http.MethodGet, server.URL+"/api/listings", nil, &listings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, listings)
}

func TestErrorStatusMapping(t *testing.T) {
	server := newTestServer(t)
	caller := newAccount(t)

	// Unknown kitty reads as 404.
	resp := doJSON(t, http.MethodGet, server.URL+"/api/kitties/404", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/kitties/404/transfer", api.KittyTransferRequest{Caller: caller, Receiver: newAccount(t)}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Breeding a kitty with itself is a 400.
	kitty := &types.Kitty{}
	resp = doJSON(t, http.MethodPost, server.URL+"/api/kitties", api.KittyCreateRequest{Owner: caller}, kitty)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/kitties/breed", api.KittyBreedRequest{Caller: caller, FirstID: kitty.ID, SecondID: kitty.ID}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Garbage ids are a 400, not a panic.
	resp = doJSON(t, http.MethodGet, server.URL+"/api/kitties/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
