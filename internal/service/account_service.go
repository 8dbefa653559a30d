package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet/internal/config"
	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/pkg/idgen"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AccountService struct {
	db              *gorm.DB
	cfg             *config.BusinessConfig
	log             *zap.Logger
	notifier        Notifier
	policy          *LimitPolicy
	accountRepo     *repository.AccountRepository
	userRepo        *repository.UserRepository
	tierRepo        *repository.TierRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
}

func NewAccountService(db *gorm.DB, cfg *config.BusinessConfig, notifier Notifier, log *zap.Logger) *AccountService {
	return &AccountService{
		db:              db,
		cfg:             cfg,
		log:             log.Named("account"),
		notifier:        notifier,
		policy:          NewLimitPolicy(db),
		accountRepo:     repository.NewAccountRepository(db),
		userRepo:        repository.NewUserRepository(db),
		tierRepo:        repository.NewTierRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		categoryRepo:    repository.NewCategoryRepository(db),
	}
}

// AccountSummary is what a sender may learn about someone else's account.
type AccountSummary struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
}

type AccountOverview struct {
	AccountNumber string             `json:"account_number"`
	Name          string             `json:"name"`
	Balance       int64              `json:"balance"`
	BookBalance   int64              `json:"book_balance"`
	DailyUsage    int64              `json:"daily_usage"`
	Tier          *model.AccountTier `json:"tier"`
}

type OpenAccountRequest struct {
	UserID    int64  `json:"-"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type TopUpRequest struct {
	UserID      int64  `json:"-"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// ResolveAccount looks up an account number on behalf of callerUserID. The caller's own
// account never resolves.
func (s *AccountService) ResolveAccount(ctx context.Context, accountNumber string, callerUserID int64) (*AccountSummary, error) {
	if !idgen.IsAccountNumber(accountNumber) {
		return nil, invalid("account_number", "account number must be %d digits", idgen.AccountNumberLength)
	}

	account, err := s.accountRepo.GetByAccountNumberExcludingUser(ctx, accountNumber, callerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, nil, account.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account owner: %w", err)
	}

	return &AccountSummary{AccountNumber: account.AccountNumber, Name: user.DisplayName()}, nil
}

// Open registers the caller's profile and opens their account. Calling it again returns
// the account already open.
func (s *AccountService) Open(ctx context.Context, req *OpenAccountRequest) (*model.Account, error) {
	existing, err := s.accountRepo.GetByUserID(ctx, nil, req.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}

	tier, err := s.tierRepo.GetByName(ctx, s.cfg.DefaultTier)
	if err != nil {
		return nil, fmt.Errorf("load default tier %q: %w", s.cfg.DefaultTier, err)
	}

	account := &model.Account{
		UserID:      req.UserID,
		Balance:     s.cfg.DefaultBalance,
		BookBalance: s.cfg.DefaultBalance,
		TierID:      tier.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.userRepo.GetByID(ctx, tx, req.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			user := &model.User{
				ID:        req.UserID,
				Email:     strings.ToLower(strings.TrimSpace(req.Email)),
				FirstName: strings.TrimSpace(req.FirstName),
				LastName:  strings.TrimSpace(req.LastName),
			}
			if err := s.userRepo.Create(ctx, tx, user); err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent Open for the same user may have won the unique user_id index.
		if existing, getErr := s.accountRepo.GetByUserID(ctx, nil, req.UserID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.log.Info("account opened",
		zap.Int64("user_id", req.UserID),
		zap.String("account_number", account.AccountNumber))
	return account, nil
}

func (s *AccountService) GetOverview(ctx context.Context, userID int64) (*AccountOverview, error) {
	account, err := s.accountRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	tier, err := s.tierRepo.GetByID(ctx, nil, account.TierID)
	if err != nil {
		return nil, fmt.Errorf("load tier: %w", err)
	}
	usage, err := s.transactionRepo.SumSince(ctx, nil, account.ID, startOfDay(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("sum daily usage: %w", err)
	}

	return &AccountOverview{
		AccountNumber: account.AccountNumber,
		Name:          user.DisplayName(),
		Balance:       account.Balance,
		BookBalance:   account.BookBalance,
		DailyUsage:    usage,
		Tier:          tier,
	}, nil
}

// TopUp credits the caller's own account, subject to the tier's maximum balance.
// No funding source is debited; deployments outside a sandbox gate the route behind one or an admin role.
func (s *AccountService) TopUp(ctx context.Context, req *TopUpRequest) (*model.TransactionRecord, error) {
	if req.Amount <= 0 {
		return nil, invalid("amount", "amount must be greater than zero")
	}

	account, err := s.accountRepo.GetByUserID(ctx, nil, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	tier, err := s.tierRepo.GetByID(ctx, nil, account.TierID)
	if err != nil {
		return nil, policyFailure("load tier", err)
	}
	category, err := s.categoryRepo.GetOrCreate(ctx, model.CategoryTopUp)
	if err != nil {
		return nil, fmt.Errorf("load top-up category: %w", err)
	}

	record := &model.TransactionRecord{
		AccountID:      account.ID,
		UserID:         account.UserID,
		Amount:         req.Amount,
		Type:           model.TransactionTypeCredit,
		Status:         model.TransactionStatusSuccess,
		CategoryID:     &category.ID,
		SessionID:      idgen.GenerateSessionID(),
		TransactionRef: idgen.GenerateTransactionRef(),
		Description:    req.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.accountRepo.LockForUpdate(ctx, tx, account.ID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		current := locked[account.ID]

		if err := s.policy.Evaluate(ctx, tx, current, tier, req.Amount, PolicyDeposit); err != nil {
			return err
		}
		if err := s.accountRepo.ApplyDelta(ctx, tx, current.ID, req.Amount); err != nil {
			return fmt.Errorf("credit account: %w", err)
		}

		record.CurrentBalance = current.Balance + req.Amount
		record.BookBalance = current.BookBalance + req.Amount
		if err := s.transactionRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("record top-up: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("top-up committed",
		zap.Int64("account_id", account.ID),
		zap.Int64("amount", req.Amount),
		zap.String("transaction_ref", record.TransactionRef))

	notify(s.notifier, s.log, user, record)
	return record, nil
}
