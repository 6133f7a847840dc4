package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arta-bank/arta_bank/internal/ledger"
	"github.com/arta-bank/arta_bank/internal/notification"
)

type testNotifier struct {
	last notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T, numbers ...string) (*Service, ledger.Store, *testNotifier) {
	t.Helper()
	store := ledger.NewInMemory()
	for _, number := range numbers {
		if err := store.EnsureAccount(context.Background(), number); err != nil {
			t.Fatalf("ensure account %s: %v", number, err)
		}
	}
	notifier := &testNotifier{}
	return NewService(store, notifier), store, notifier
}

func TestAccountLifecycleScenario(t *testing.T) {
	svc, _, _ := newTestService(t, "11312345678", "11387654321")
	ctx := context.Background()

	balance, err := svc.Deposit(ctx, DepositInput{AccountNumber: "11312345678", Amount: dec("100")})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !balance.Equal(dec("100")) {
		t.Fatalf("expected balance 100, got %s", balance)
	}

	if _, err := svc.Withdraw(ctx, WithdrawInput{AccountNumber: "11312345678", Amount: dec("150")}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, err = svc.Balance(ctx, "11312345678")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(dec("100")) {
		t.Fatalf("balance changed by failed withdrawal: %s", balance)
	}

	balance, err = svc.Withdraw(ctx, WithdrawInput{AccountNumber: "11312345678", Amount: dec("40")})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !balance.Equal(dec("60")) {
		t.Fatalf("expected balance 60, got %s", balance)
	}

	outcome, err := svc.Transfer(ctx, TransferInput{FromNumber: "11312345678", ToNumber: "11387654321", Amount: dec("60")})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !outcome.SenderBalance.IsZero() {
		t.Fatalf("expected sender balance 0, got %s", outcome.SenderBalance)
	}
	if !outcome.ReceiverBalance.Equal(dec("60")) {
		t.Fatalf("expected receiver balance 60, got %s", outcome.ReceiverBalance)
	}

	senderMoves, err := svc.Movements(ctx, "11312345678")
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(senderMoves) != 3 {
		t.Fatalf("expected 3 sender movements, got %d", len(senderMoves))
	}
	receiverMoves, _ := svc.Movements(ctx, "11387654321")
	if len(receiverMoves) != 1 {
		t.Fatalf("expected 1 receiver movement, got %d", len(receiverMoves))
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newTestService(t, "11312345678")
	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-1")} {
		if _, err := svc.Deposit(context.Background(), DepositInput{AccountNumber: "11312345678", Amount: amount}); !errors.Is(err, ledger.ErrInvalidAmount) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestWithdrawRejectsNonPositiveAmount(t *testing.T) {
	svc, store, _ := newTestService(t, "11312345678")
	ledger.SeedBalance(store, "11312345678", dec("100"))

	if _, err := svc.Withdraw(context.Background(), WithdrawInput{AccountNumber: "11312345678", Amount: decimal.Zero}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransferRejectsSelfTransfer(t *testing.T) {
	svc, store, _ := newTestService(t, "11312345678")
	ledger.SeedBalance(store, "11312345678", dec("100"))

	if _, err := svc.Transfer(context.Background(), TransferInput{FromNumber: "11312345678", ToNumber: "11312345678", Amount: dec("10")}); !errors.Is(err, ledger.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}

func TestTransferNotifiesReceiver(t *testing.T) {
	svc, store, notifier := newTestService(t, "11312345678", "11387654321")
	ledger.SeedBalance(store, "11312345678", dec("100"))

	if _, err := svc.Transfer(context.Background(), TransferInput{FromNumber: "11312345678", ToNumber: "11387654321", Amount: dec("25")}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if notifier.last.Kind != notification.KindTransferReceived {
		t.Fatalf("expected transfer notification, got %+v", notifier.last)
	}
	if notifier.last.AccountNumber != "11387654321" {
		t.Fatalf("notification went to %s", notifier.last.AccountNumber)
	}
}

func TestTransferUnknownAccounts(t *testing.T) {
	svc, store, _ := newTestService(t, "11312345678")
	ledger.SeedBalance(store, "11312345678", dec("100"))
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, TransferInput{FromNumber: "missing", ToNumber: "11312345678", Amount: dec("10")}); !errors.Is(err, ledger.ErrSenderNotFound) {
		t.Fatalf("expected ErrSenderNotFound, got %v", err)
	}
	if _, err := svc.Transfer(ctx, TransferInput{FromNumber: "11312345678", ToNumber: "missing", Amount: dec("10")}); !errors.Is(err, ledger.ErrReceiverNotFound) {
		t.Fatalf("expected ErrReceiverNotFound, got %v", err)
	}
}

func TestMovementsEmptyHistory(t *testing.T) {
	svc, _, _ := newTestService(t, "11312345678")

	movements, err := svc.Movements(context.Background(), "11312345678")
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(movements) != 0 {
		t.Fatalf("expected empty history, got %d", len(movements))
	}
}
