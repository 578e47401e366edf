package http

import (
	"github.com/ainager-onboarding/internal/transport/http/handler"
	appmiddleware "github.com/ainager-onboarding/internal/transport/http/middleware"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Onboarding handler.OnboardingService
	DB         handler.Pinger
	// Tickets is optional; when set, tenant creation requires a valid ticket.
	Tickets appmiddleware.TicketVerifier
}
