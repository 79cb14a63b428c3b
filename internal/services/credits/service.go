// Package credits owns the prepaid balance: debits for billable actions,
// credits from purchases, and the subscription drip.
package credits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type Service struct {
	repo ports.CreditRepository
}

func NewService(repo ports.CreditRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Balance(ctx context.Context, userID string) (domain.UserCredits, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error) {
	return s.repo.ListTransactions(ctx, userID, limit)
}

// HasSufficient reports whether the balance covers count units of an
// action, along with the current balance and the total cost. Read-only;
// a concurrent debit can still win the race, so Debit rechecks.
func (s *Service) HasSufficient(ctx context.Context, userID string, action Action, count int) (enough bool, balance, cost int, err error) {
	if count < 1 {
		count = 1
	}
	cost = Cost(action) * count
	cur, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return false, 0, cost, err
	}
	return cur.Balance >= cost, cur.Balance, cost, nil
}

// Debit charges count units of an action. ok=false with no mutation when
// the balance cannot cover the cost; free actions short-circuit without
// locking.
func (s *Service) Debit(ctx context.Context, userID string, action Action, count int, description string) (ok bool, balance int, err error) {
	if count < 1 {
		count = 1
	}
	cost := Cost(action) * count
	if cost == 0 {
		cur, err := s.repo.GetOrCreate(ctx, userID)
		if err != nil {
			return false, 0, err
		}
		return true, cur.Balance, nil
	}

	err = s.repo.WithUser(ctx, userID, func(txn ports.CreditTxn) error {
		c := txn.Credits()
		balance = c.Balance
		if c.Balance < cost {
			ok = false
			return nil
		}
		c.Balance -= cost
		c.TotalUsed += cost
		balance = c.Balance
		ok = true
		txn.Append(domain.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Amount:       -cost,
			Type:         domain.TxUsage,
			Description:  description,
			BalanceAfter: c.Balance,
		})
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return ok, balance, nil
}

// Credit adds purchased credits. externalRef is the checkout session id; a
// ref seen before returns ErrDuplicateTransaction and changes nothing.
func (s *Service) Credit(ctx context.Context, userID string, amount int, externalRef, description string) (balance int, err error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	err = s.repo.WithUser(ctx, userID, func(txn ports.CreditTxn) error {
		c := txn.Credits()
		c.Balance += amount
		c.TotalPurchased += amount
		balance = c.Balance
		txn.Append(domain.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Amount:       amount,
			Type:         domain.TxPurchase,
			Description:  description,
			ExternalRef:  externalRef,
			BalanceAfter: c.Balance,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	zap.L().Info("credits added",
		zap.String("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("balance", balance))
	return balance, nil
}

// Grant is the support path: add credits with no payment attached.
func (s *Service) Grant(ctx context.Context, userID string, amount int, reason string) (balance int, err error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	err = s.repo.WithUser(ctx, userID, func(txn ports.CreditTxn) error {
		c := txn.Credits()
		c.Balance += amount
		c.TotalPurchased += amount
		balance = c.Balance
		txn.Append(domain.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Amount:       amount,
			Type:         domain.TxAdminGrant,
			Description:  reason,
			BalanceAfter: c.Balance,
		})
		return nil
	})
	return balance, err
}

// SetBalance forces the balance to an absolute value, recording the delta.
func (s *Service) SetBalance(ctx context.Context, userID string, target int, reason string) error {
	if target < 0 {
		return fmt.Errorf("target balance must be non-negative, got %d", target)
	}
	return s.repo.WithUser(ctx, userID, func(txn ports.CreditTxn) error {
		c := txn.Credits()
		delta := target - c.Balance
		if delta > 0 {
			c.TotalPurchased += delta
		} else {
			c.TotalUsed += -delta
		}
		c.Balance = target
		txn.Append(domain.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Amount:       delta,
			Type:         domain.TxAdminSet,
			Description:  reason,
			BalanceAfter: c.Balance,
		})
		return nil
	})
}

// HasProcessedRef reports whether a payment session/event was already
// credited.
func (s *Service) HasProcessedRef(ctx context.Context, ref string) (bool, error) {
	return s.repo.HasExternalRef(ctx, ref)
}
