// Package router maps HTTP routes to handlers and applies the
// authentication, role, rate-limit and cache middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/wadhahbr/room-reservation/internal/config"
	"github.com/wadhahbr/room-reservation/internal/handler"
	"github.com/wadhahbr/room-reservation/internal/middleware"
	"github.com/wadhahbr/room-reservation/internal/model"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Slots        *handler.SlotHandler
	Reservations *handler.ReservationHandler
	Users        *handler.UserHandler
	Reset        *handler.PasswordResetHandler
}

// Register wires all routes.  Public browse endpoints sit behind the
// response cache; every route shares the rate limiter; mutations require
// a JWT and, where noted, the admin role.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	// Authentication.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/forgot-password", h.Reset.Forgot)
	auth.POST("/reset-password", h.Reset.Reset)

	// Public browse endpoints, cached.
	pub := e.Group("/v1")
	pub.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	pub.GET("/rooms", h.Rooms.List)
	pub.GET("/rooms/:id", h.Rooms.Get)
	pub.GET("/rooms/images/:name", h.Rooms.ServeImage)
	pub.GET("/slots", h.Slots.List)
	pub.GET("/slots/:id", h.Slots.Get)
	pub.GET("/slots/disponibles", h.Slots.ListAvailable)

	// Authenticated endpoints (any role).
	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(cfg.JWTSecret))
	authed.Use(middleware.RequireRole(model.RoleAdmin, model.RoleClient))
	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/me", h.Auth.Me)
	authed.POST("/reservations", h.Reservations.Create)
	authed.GET("/reservations/mine", h.Reservations.ListMine)
	authed.GET("/reservations/:id", h.Reservations.Get)
	authed.PUT("/reservations/:id", h.Reservations.Update)
	authed.POST("/reservations/:id/cancel", h.Reservations.Cancel)

	// Admin-only endpoints.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/rooms", h.Rooms.Create)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.DELETE("/rooms/:id", h.Rooms.Delete)
	admin.POST("/rooms/:id/image", h.Rooms.UploadImage)
	admin.POST("/slots", h.Slots.Create)
	admin.PUT("/slots/:id", h.Slots.Update)
	admin.DELETE("/slots/:id", h.Slots.Delete)
	admin.GET("/reservations", h.Reservations.ListAll)
	admin.POST("/reservations/:id/confirm", h.Reservations.Confirm)
	admin.POST("/reservations/:id/payment/confirm", h.Reservations.ConfirmPayment)
	admin.POST("/reservations/:id/payment/cancel", h.Reservations.CancelPayment)
	admin.GET("/users", h.Users.List)
}
