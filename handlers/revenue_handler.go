package handlers

import (
	"fmt"
	"net/http"

	"github.com/ferreirogomes/assetledger/services"
)

// RevenueHandler lida com o pool de receita dos ativos.
type RevenueHandler struct {
	Ledger services.Ledger
}

func NewRevenueHandler(l services.Ledger) *RevenueHandler {
	return &RevenueHandler{Ledger: l}
}

// DistributeRequest é o corpo de POST /assets/{id}/revenue/distribute.
type DistributeRequest struct {
	Amount  uint64 `json:"amount"`
	Creator string `json:"creator"`
}

// GetRevenuePool obtém o pool de receita de um ativo.
// GET /assets/{id}/revenue
func (h *RevenueHandler) GetRevenuePool(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}

	pool, err := h.Ledger.GetRevenuePool(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// DistributeRevenue registra receita distribuída.
// POST /assets/{id}/revenue/distribute
func (h *RevenueHandler) DistributeRevenue(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		badRequest(w, "ID do ativo inválido")
		return
	}
	var req DistributeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	creator, err := parseCaller(req.Creator)
	if err != nil {
		badRequest(w, fmt.Sprintf("chave pública do criador inválida: %v", err))
		return
	}

	pool, err := h.Ledger.DistributeRevenue(r.Context(), assetID, req.Amount, creator)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}
