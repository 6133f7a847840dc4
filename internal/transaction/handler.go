package transaction

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/arta-bank/arta_bank/internal/ledger"
)

// Handler exposes the ledger operations over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type depositRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type withdrawRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// Deposit credits an account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance, err := h.service.Deposit(c.UserContext(), DepositInput{AccountNumber: req.AccountNumber, Amount: req.Amount})
	if err != nil {
		return mutationError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"balance": balance})
}

// Withdraw debits an account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance, err := h.service.Withdraw(c.UserContext(), WithdrawInput{AccountNumber: req.AccountNumber, Amount: req.Amount})
	if err != nil {
		return mutationError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"balance": balance})
}

// Transfer moves funds between two accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	outcome, err := h.service.Transfer(c.UserContext(), TransferInput{
		FromNumber: req.FromAccountNumber,
		ToNumber:   req.ToAccountNumber,
		Amount:     req.Amount,
	})
	if err != nil {
		return mutationError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"sender_balance":   outcome.SenderBalance,
		"receiver_balance": outcome.ReceiverBalance,
		"completed_at":     outcome.CompletedAt,
	})
}

// Balance returns the current balance for the account number query parameter.
func (h *Handler) Balance(c *fiber.Ctx) error {
	number := c.Query("account_number")
	if number == "" {
		return fiber.NewError(http.StatusBadRequest, "account_number is required")
	}
	balance, err := h.service.Balance(c.UserContext(), number)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account_number": number, "balance": balance})
}

// Movements returns the movement history for the account number query
// parameter. No history is a 200 with an empty list.
func (h *Handler) Movements(c *fiber.Ctx) error {
	number := c.Query("account_number")
	if number == "" {
		return fiber.NewError(http.StatusBadRequest, "account_number is required")
	}
	movements, err := h.service.Movements(c.UserContext(), number)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account_number": number, "movements": movements})
}

// mutationError maps domain failures of balance-mutating calls to HTTP
// errors: business-rule violations are 400, everything else is a storage
// failure surfaced as 500.
func mutationError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrSenderNotFound),
		errors.Is(err, ledger.ErrReceiverNotFound):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
