package service

import (
	"context"
	"fmt"
	"time"

	"wallet/internal/model"
	"wallet/internal/repository"

	"gorm.io/gorm"
)

// Policy categories. They name the kind of movement being checked, not ledger categories.
const (
	PolicyDeposit  = "deposit"
	PolicyTransfer = "transfer"
)

// LimitPolicy decides whether an amount may move on an account under its tier.
// It only reads.
type LimitPolicy struct {
	transactionRepo *repository.TransactionRepository
	now             func() time.Time
}

func NewLimitPolicy(db *gorm.DB) *LimitPolicy {
	return &LimitPolicy{
		transactionRepo: repository.NewTransactionRepository(db),
		now:             time.Now,
	}
}

// Evaluate returns nil to allow, a *DenialError to deny, or an error wrapping
// ErrPolicyEvaluation when the decision could not be made. Pass tx to read inside a
// locked transaction.
func (p *LimitPolicy) Evaluate(ctx context.Context, tx *gorm.DB, account *model.Account, tier *model.AccountTier, amount int64, category string) error {
	if account == nil || tier == nil {
		return policyFailure("load", fmt.Errorf("account or tier missing"))
	}

	switch category {
	case PolicyDeposit:
		return p.checkDeposit(account, tier, amount)
	case PolicyTransfer:
		return p.checkTransfer(ctx, tx, account, tier, amount)
	default:
		return policyFailure("category", fmt.Errorf("unknown category %q", category))
	}
}

func (p *LimitPolicy) checkDeposit(account *model.Account, tier *model.AccountTier, amount int64) error {
	if tier.MaxBalance == 0 {
		return nil
	}
	if result := account.Balance + amount; result > tier.MaxBalance {
		return &DenialError{
			Code: DenyMaxBalance,
			Reason: fmt.Sprintf("Maximum balance exceeded: limit %s, resulting balance %s",
				formatAmount(tier.MaxBalance), formatAmount(result)),
		}
	}
	return nil
}

func (p *LimitPolicy) checkTransfer(ctx context.Context, tx *gorm.DB, account *model.Account, tier *model.AccountTier, amount int64) error {
	if tier.Unlimited {
		return nil
	}
	if tier.MaxTransferPerTransaction != 0 && amount > tier.MaxTransferPerTransaction {
		return ErrTransferOnceExceeded
	}
	if tier.MaxTransferPerDay == 0 {
		return nil
	}

	// Incoming and outgoing amounts share the daily allowance.
	used, err := p.transactionRepo.SumSince(ctx, tx, account.ID, startOfDay(p.now()))
	if err != nil {
		return policyFailure("daily total", err)
	}
	if used+amount > tier.MaxTransferPerDay {
		return ErrDailyLimitExceeded
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
