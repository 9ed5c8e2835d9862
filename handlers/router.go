package handlers

import (
	"net/http"

	"github.com/ferreirogomes/assetledger/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter monta as rotas HTTP sobre o ledger.
func NewRouter(l services.Ledger) http.Handler {
	assetHandler := NewAssetHandler(l)
	tokenHandler := NewTokenHandler(l)
	revenueHandler := NewRevenueHandler(l)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/assets", func(r chi.Router) {
		r.Post("/", assetHandler.CreateAsset)
		r.Get("/", assetHandler.ListAssets)
		r.Get("/by-address/{address}", assetHandler.GetAssetByAddress)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", assetHandler.GetAssetByID)
			r.Post("/mint", assetHandler.MintFractionTokens)
			r.Get("/transactions", assetHandler.ListTransactions)

			r.Get("/escrow", tokenHandler.GetEscrow)
			r.Post("/buy", tokenHandler.BuyFractions)

			r.Get("/revenue", revenueHandler.GetRevenuePool)
			r.Post("/revenue/distribute", revenueHandler.DistributeRevenue)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
