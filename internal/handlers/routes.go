package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.HealthHandler)
	app.Get("/ready", h.ReadyHandler)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/ws", h.WebsocketUpgradeHandler, h.WebsocketHandler())

	api := app.Group("/api")
	api.Get("/totals", h.GetTotalsHandler)
	api.Get("/paddle-pledges", h.GetPaddlePledgesHandler)
	api.Put("/paddle-pledges/:tierCents", h.UpdatePaddlePledgeHandler)
	api.Get("/text-pledges", h.GetTextPledgesHandler)
	api.Delete("/reset", h.ResetHandler)
	api.Delete("/reset-sms", h.ResetSMSHandler)
	api.Post("/webhook/simpletexting", h.SimpleTextingWebhookHandler)
}
