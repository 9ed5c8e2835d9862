package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferreirogomes/assetledger/config"
	"github.com/ferreirogomes/assetledger/handlers"
	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/services"
	"github.com/ferreirogomes/assetledger/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, policy services.Policy) *httptest.Server {
	t.Helper()
	gateway := services.NewTransactionGateway(storage.NewMemoryStore(), services.NewAddressDeriver(services.DefaultProgramID), policy)
	srv := httptest.NewServer(handlers.NewRouter(gateway))
	t.Cleanup(srv.Close)
	return srv
}

// call faz a requisição e decodifica a resposta em out, retornando o status.
func call(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type apiError struct {
	Error string `json:"error"`
}

func TestEndToEndAssetLifecycle(t *testing.T) {
	srv := newTestServer(t, services.Policy{FundEscrowOnMint: true})
	creator := solana.NewWallet().PublicKey().String()
	buyer := solana.NewWallet().PublicKey().String()
	assetURL := fmt.Sprintf("%s/assets/1", srv.URL)

	var asset models.Asset
	status := call(t, http.MethodPost, srv.URL+"/assets", map[string]interface{}{
		"asset_id": 1, "metadata_uri": "ipfs://imovel-1", "total_supply": 1000, "creator": creator,
	}, &asset)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, uint64(1000), asset.RemainingSupply)

	var apiErr apiError
	status = call(t, http.MethodPost, srv.URL+"/assets", map[string]interface{}{
		"asset_id": 1, "metadata_uri": "x", "total_supply": 1, "creator": creator,
	}, &apiErr)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DuplicateAsset", apiErr.Error)

	status = call(t, http.MethodPost, assetURL+"/mint", map[string]interface{}{"amount": 400, "signer": creator}, &asset)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(600), asset.RemainingSupply)

	var escrow models.Escrow
	status = call(t, http.MethodPost, assetURL+"/buy", map[string]interface{}{"amount": 150, "buyer": buyer}, &escrow)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(250), escrow.Amount)

	apiErr = apiError{}
	status = call(t, http.MethodPost, assetURL+"/buy", map[string]interface{}{"amount": 251, "buyer": buyer}, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "InsufficientTokenBalance", apiErr.Error)

	var pool models.RevenuePool
	status = call(t, http.MethodPost, assetURL+"/revenue/distribute", map[string]interface{}{"amount": 90, "creator": creator}, &pool)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(90), pool.TotalRevenue)
	assert.Equal(t, uint64(90), pool.DistributedRevenue)

	var txs []models.Transaction
	status = call(t, http.MethodGet, assetURL+"/transactions", nil, &txs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, txs, 4)
	assert.Equal(t, models.KindCreateAsset, txs[0].Kind)
	assert.Equal(t, models.KindDistributeRevenue, txs[3].Kind)

	var byAddr models.Asset
	status = call(t, http.MethodGet, srv.URL+"/assets/by-address/"+asset.Address.String(), nil, &byAddr)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(1), byAddr.ID)
}

func TestEndToEndStrictAuthorization(t *testing.T) {
	srv := newTestServer(t, services.Policy{StrictAuthorization: true, RejectZeroAmount: true})
	creator := solana.NewWallet().PublicKey().String()
	intruder := solana.NewWallet().PublicKey().String()

	status := call(t, http.MethodPost, srv.URL+"/assets", map[string]interface{}{
		"asset_id": 7, "metadata_uri": "ipfs://7", "total_supply": 10, "creator": creator,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var apiErr apiError
	status = call(t, http.MethodPost, srv.URL+"/assets/7/mint", map[string]interface{}{"amount": 1, "signer": intruder}, &apiErr)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", apiErr.Error)

	apiErr = apiError{}
	status = call(t, http.MethodPost, srv.URL+"/assets/7/mint", map[string]interface{}{"amount": 0, "signer": creator}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidAmount", apiErr.Error)
}

func TestOpenStoreMemory(t *testing.T) {
	store, err := openStore(config.DefaultConfig())
	require.NoError(t, err)
	defer store.Close()
	_, ok := store.(*storage.MemoryStore)
	assert.True(t, ok)
}
