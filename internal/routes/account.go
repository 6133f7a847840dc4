package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/arta-bank/arta_bank/internal/account"
	"github.com/arta-bank/arta_bank/internal/ledger"
)

// RegisterAccountRoutes wires the registration endpoint and announces the
// freshly opened account to the ledger store.
func RegisterAccountRoutes(r fiber.Router, accounts *account.Service, store ledger.Store, logger *slog.Logger) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			NationalID string `json:"national_id"`
			Name       string `json:"name"`
			Email      string `json:"email"`
			Phone      string `json:"phone"`
			Password   string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := accounts.Register(c.UserContext(), account.Registration{
			NationalID: req.NationalID,
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Password:   req.Password,
		})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := store.EnsureAccount(c.UserContext(), acct.Number); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if logger != nil {
			logger.Info("account registered",
				slog.String("account_number", acct.Number),
				slog.String("name", acct.Name),
				slog.Int("status", http.StatusCreated),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"account_number": acct.Number,
			"name":           acct.Name,
			"email":          acct.Email,
			"phone":          acct.Phone,
			"created_at":     acct.CreatedAt,
		})
	})
}
