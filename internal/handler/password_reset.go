package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/config"
	"github.com/wadhahbr/room-reservation/internal/queue"
	"github.com/wadhahbr/room-reservation/internal/repository"
)

// PasswordResetHandler implements the forgot/reset password flow.  The
// reset code travels to the user by email through the event queue; only
// its hash is stored, and it is single-use with a one hour TTL.
type PasswordResetHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Resets *repository.ResetRepo
	Tokens *repository.TokenRepo
	Events booking.Publisher
}

func NewPasswordResetHandler(cfg config.Config, u *repository.UserRepo, r *repository.ResetRepo, t *repository.TokenRepo, ev booking.Publisher) *PasswordResetHandler {
	return &PasswordResetHandler{Cfg: cfg, Users: u, Resets: r, Tokens: t, Events: ev}
}

type forgotReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Forgot issues a reset code for the given email.  The response is the
// same whether or not the account exists, so the endpoint cannot be used
// to enumerate registered emails.
func (h *PasswordResetHandler) Forgot(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accepted := echo.Map{"message": "if the account exists, a reset code has been sent"}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, accepted)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	raw, err := h.Resets.Issue(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset failed"})
	}
	if h.Events != nil {
		_ = h.Events.Publish(ctx, queue.ReservationEvent{
			Kind:        queue.KindPasswordReset,
			ClientName:  u.Username,
			ClientEmail: u.Email,
			ResetToken:  raw,
			OccurredAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, accepted)
}

// Reset redeems a code and sets the new password, revoking every live
// refresh token so stolen sessions die with the old password.
func (h *PasswordResetHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := strings.TrimSpace(req.Token)
	if token == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and password of at least 8 characters required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Resets.Redeem(ctx, token)
	if err != nil {
		if err == repository.ErrResetInvalid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired reset code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
	}
	if err := h.Users.SetPassword(ctx, userID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "set password failed"})
	}
	_ = h.Tokens.RevokeAllForUser(ctx, userID)

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
