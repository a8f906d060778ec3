// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"thavon_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	// The RouterContext provides access to shared middleware and configuration.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
// This avoids passing many parameters to each module's RegisterRoutes method.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// Webhooks is the public /webhooks route group (rate limited, no auth;
	// endpoint-level authentication is the webhook secret / signature).
	Webhooks *gin.RouterGroup
	// API is the /api/v1 route group for internal consumers.
	API *gin.RouterGroup
	// WebhookRateLimiter is the shared rate limiter for public webhook routes.
	WebhookRateLimiter *httpkit.IPRateLimiter
}
