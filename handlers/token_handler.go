package handlers

import (
	"fmt"
	"net/http"

	"github.com/ferreirogomes/assetledger/services"
)

// TokenHandler lida com o escrow e a compra de frações.
type TokenHandler struct {
	Ledger services.Ledger
}

func NewTokenHandler(l services.Ledger) *TokenHandler {
	return &TokenHandler{Ledger: l}
}

// BuyRequest é o corpo de POST /assets/{id}/buy.
type BuyRequest struct {
	Amount uint64 `json:"amount"`
	Buyer  string `json:"buyer"`
}

// GetEscrow obtém o saldo em escrow de um ativo.
// GET /assets/{id}/escrow
func (h *TokenHandler) GetEscrow(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}

	escrow, err := h.Ledger.GetEscrow(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, escrow)
}

// BuyFractions debita frações do escrow.
// POST /assets/{id}/buy
func (h *TokenHandler) BuyFractions(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}
	var req BuyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	buyer, err := parseCaller(req.Buyer)
	if err != nil {
		badRequest(w, fmt.Sprintf("chave pública do comprador inválida: %v", err))
		return
	}

	escrow, err := h.Ledger.BuyFractions(r.Context(), assetID, req.Amount, buyer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, escrow)
}
