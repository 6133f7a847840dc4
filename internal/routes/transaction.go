package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arta-bank/arta_bank/internal/transaction"
)

// RegisterTransactionRoutes wires the balance-mutating and balance-reading endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler) {
	r.Post("/deposit", h.Deposit)
	r.Post("/withdraw", h.Withdraw)
	r.Post("/transfer", h.Transfer)
	r.Get("/balance", h.Balance)
	r.Get("/movements", h.Movements)
}
