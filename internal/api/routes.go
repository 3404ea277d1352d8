package api

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) setupRoutes(r chi.Router) {
	r.Get("/healthcheck", registerHandler(h.HealthCheck))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/fund", registerHandler(h.Fund))
		r.Post("/stake", registerHandler(h.Stake))
		r.Post("/unstake", registerHandler(h.Unstake))
		r.Post("/compound", registerHandler(h.CompoundRewards))
		r.Post("/claim", registerHandler(h.ClaimReward))

		r.Get("/pool", registerHandler(h.GetPool))
		r.Get("/stakers/{account}", registerHandler(h.GetStaker))
		r.Get("/stakers/{account}/rewards", registerHandler(h.GetRewards))
		r.Get("/stakers/{account}/events", registerHandler(h.GetEvents))

		r.Post("/token/approve", registerHandler(h.Approve))
		r.Post("/token/transfer", registerHandler(h.Transfer))
		r.Get("/token/balances/{account}", registerHandler(h.GetTokenBalance))
	})
}
