package service

import (
	"boxoffice/internal/external"
	"boxoffice/internal/handoff"
	"boxoffice/internal/messaging"
	"boxoffice/internal/pricing"
	"boxoffice/internal/session"
)

// Services bundles the application services
type Services struct {
	Screenings *ScreeningService
	Checkout   *CheckoutService
}

func NewServices(client *external.TheatreClient, registry *session.Registry, store handoff.Store, natsClient *messaging.NATSClient) *Services {
	calc := pricing.NewCalculator(client)
	screenings := NewScreeningService(client, registry, calc)
	checkout := NewCheckoutService(client, registry, store, calc, natsClient)

	return &Services{
		Screenings: screenings,
		Checkout:   checkout,
	}
}
