package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// UserHandler exposes profile and credit endpoints for the authenticated user.
type UserHandler struct {
	users   ports.UserRepository
	credits ports.CreditService
}

func NewUserHandler(users ports.UserRepository, credits ports.CreditService) *UserHandler {
	return &UserHandler{users: users, credits: credits}
}

type profileResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Credits        int        `json:"credits"`
	TrialUsed      bool       `json:"trial_used"`
	TrialExpiresAt *time.Time `json:"trial_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type transactionResponse struct {
	ID           string    `json:"id"`
	Amount       int       `json:"amount"`
	Kind         string    `json:"kind"`
	Description  string    `json:"description"`
	GenerationID string    `json:"generation_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type addCreditsRequest struct {
	Amount      int    `json:"amount" validate:"required,gt=0"`
	Description string `json:"description"`
}

type addCreditsResponse struct {
	Message    string `json:"message"`
	NewBalance int    `json:"new_balance"`
}

// Profile handles GET /v1/users/me. Reading the balance through the credit
// service applies lazy trial expiry.
//
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/me [get]
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	balance, err := h.credits.Balance(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	user, err := h.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Credits:        balance,
		TrialUsed:      user.TrialUsed,
		TrialExpiresAt: user.TrialExpiresAt,
		CreatedAt:      user.CreatedAt,
	})
}

// CreditHistory handles GET /v1/users/me/credits — the recent ledger entries.
//
// @Summary      Get the caller's credit transaction history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]transactionResponse
// @Router       /v1/users/me/credits [get]
func (h *UserHandler) CreditHistory(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	txs, err := h.credits.History(c.Request().Context(), userID, 50)
	if err != nil {
		return err
	}

	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = transactionResponse{
			ID:           tx.ID,
			Amount:       tx.Amount,
			Kind:         string(tx.Kind),
			Description:  tx.Description,
			GenerationID: tx.GenerationID,
			CreatedAt:    tx.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, map[string][]transactionResponse{"transactions": out})
}

// AddCredits handles POST /v1/users/me/credits — credit purchase.
//
// @Summary      Add purchased credits
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addCreditsRequest  true  "Amount to add"
// @Success      200   {object}  addCreditsResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/users/me/credits [post]
func (h *UserHandler) AddCredits(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req addCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.credits.Purchase(c.Request().Context(), userID, req.Amount, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, addCreditsResponse{
		Message:    "credits added",
		NewBalance: balance,
	})
}
