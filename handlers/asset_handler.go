package handlers

import (
	"fmt"
	"net/http"

	"github.com/ferreirogomes/assetledger/services"

	"github.com/go-chi/chi/v5"
)

// AssetHandler lida com requisições HTTP relacionadas a ativos.
type AssetHandler struct {
	Ledger services.Ledger
}

// NewAssetHandler cria uma nova instância do handler de ativos.
func NewAssetHandler(l services.Ledger) *AssetHandler {
	return &AssetHandler{Ledger: l}
}

// CreateAssetRequest é o corpo de POST /assets.
type CreateAssetRequest struct {
	AssetID     uint64 `json:"asset_id"`
	MetadataURI string `json:"metadata_uri"`
	TotalSupply uint64 `json:"total_supply"`
	Creator     string `json:"creator"`
}

// CreateAsset cria um novo ativo.
// POST /assets
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	creator, err := parseCaller(req.Creator)
	if err != nil {
		badRequest(w, fmt.Sprintf("chave pública do criador inválida: %v", err))
		return
	}

	asset, err := h.Ledger.CreateAsset(r.Context(), req.AssetID, req.MetadataURI, req.TotalSupply, creator)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// ListAssets lista todos os ativos.
// GET /assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Ledger.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// GetAssetByID obtém um ativo pelo ID.
// GET /assets/{id}
func (h *AssetHandler) GetAssetByID(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}

	asset, err := h.Ledger.GetAsset(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// GetAssetByAddress obtém um ativo pelo endereço derivado on-chain.
// GET /assets/by-address/{address}
func (h *AssetHandler) GetAssetByAddress(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Ledger.GetAssetByAddress(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// MintRequest é o corpo de POST /assets/{id}/mint.
type MintRequest struct {
	Amount uint64 `json:"amount"`
	Signer string `json:"signer"`
}

// MintFractionTokens emite frações contra a oferta restante.
// POST /assets/{id}/mint
func (h *AssetHandler) MintFractionTokens(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	signer, err := parseCaller(req.Signer)
	if err != nil {
		badRequest(w, fmt.Sprintf("chave pública do assinante inválida: %v", err))
		return
	}

	asset, err := h.Ledger.MintFractionTokens(r.Context(), assetID, req.Amount, signer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// ListTransactions retorna o diário de operações do ativo.
// GET /assets/{id}/transactions
func (h *AssetHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}

	txs, err := h.Ledger.ListTransactions(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
