package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/pkg/idgen"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier delivers receipts after commit. It must not block; false means the receipt was dropped.
type Notifier interface {
	Notify(receipt *model.Receipt) bool
}

type TransferService struct {
	db              *gorm.DB
	log             *zap.Logger
	notifier        Notifier
	policy          *LimitPolicy
	accountRepo     *repository.AccountRepository
	userRepo        *repository.UserRepository
	tierRepo        *repository.TierRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
	beneficiaryRepo *repository.BeneficiaryRepository
}

func NewTransferService(db *gorm.DB, notifier Notifier, log *zap.Logger) *TransferService {
	return &TransferService{
		db:              db,
		log:             log.Named("transfer"),
		notifier:        notifier,
		policy:          NewLimitPolicy(db),
		accountRepo:     repository.NewAccountRepository(db),
		userRepo:        repository.NewUserRepository(db),
		tierRepo:        repository.NewTierRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		categoryRepo:    repository.NewCategoryRepository(db),
		beneficiaryRepo: repository.NewBeneficiaryRepository(db),
	}
}

type TransferRequest struct {
	UserID          int64  `json:"-"`
	AccountNumber   string `json:"account_number"`
	Amount          int64  `json:"amount"`
	ReceiverName    string `json:"receiver_name"`
	Description     string `json:"description"`
	SaveBeneficiary bool   `json:"save_beneficiary"`
}

type TransferResult struct {
	SessionID      string    `json:"session_id"`
	TransactionRef string    `json:"transaction_ref"`
	Amount         int64     `json:"amount"`
	Balance        int64     `json:"balance"`
	ReceiverNumber string    `json:"receiver_account_number"`
	ReceiverName   string    `json:"receiver_name"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Transfer moves req.Amount from the caller's account to the account named by
// req.AccountNumber. Either both sides and both ledger rows are committed or nothing is.
func (s *TransferService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	if err := validateTransfer(req); err != nil {
		return nil, err
	}

	sender, err := s.accountRepo.GetByUserID(ctx, nil, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load sender account: %w", err)
	}
	if sender.AccountNumber == req.AccountNumber {
		return nil, ErrSelfTransfer
	}

	receiver, err := s.accountRepo.GetByAccountNumberExcludingUser(ctx, req.AccountNumber, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("resolve receiver account: %w", err)
	}

	senderUser, err := s.userRepo.GetByID(ctx, nil, sender.UserID)
	if err != nil {
		return nil, fmt.Errorf("load sender profile: %w", err)
	}
	receiverUser, err := s.userRepo.GetByID(ctx, nil, receiver.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load receiver profile: %w", err)
	}
	if !namesMatch(req.ReceiverName, receiverUser.DisplayName()) {
		return nil, ErrNameMismatch
	}

	tier, err := s.tierRepo.GetByID(ctx, nil, sender.TierID)
	if err != nil {
		return nil, policyFailure("load tier", err)
	}
	if err := s.policy.Evaluate(ctx, nil, sender, tier, req.Amount, PolicyTransfer); err != nil {
		return nil, err
	}

	debitCategory, err := s.categoryRepo.GetOrCreate(ctx, model.CategoryTransfer)
	if err != nil {
		return nil, fmt.Errorf("load transfer category: %w", err)
	}
	creditCategory, err := s.categoryRepo.GetOrCreate(ctx, model.CategoryTopUp)
	if err != nil {
		return nil, fmt.Errorf("load top-up category: %w", err)
	}

	sessionID := idgen.GenerateSessionID()
	debit := &model.TransactionRecord{
		AccountID:                 sender.ID,
		UserID:                    sender.UserID,
		Amount:                    req.Amount,
		Type:                      model.TransactionTypeDebit,
		Status:                    model.TransactionStatusSuccess,
		CategoryID:                &debitCategory.ID,
		CounterpartyAccountNumber: receiver.AccountNumber,
		CounterpartyName:          receiverUser.DisplayName(),
		SessionID:                 sessionID,
		TransactionRef:            idgen.GenerateTransactionRef(),
		Description:               req.Description,
	}
	credit := &model.TransactionRecord{
		AccountID:                 receiver.ID,
		UserID:                    receiver.UserID,
		Amount:                    req.Amount,
		Type:                      model.TransactionTypeCredit,
		Status:                    model.TransactionStatusSuccess,
		CategoryID:                &creditCategory.ID,
		CounterpartyAccountNumber: sender.AccountNumber,
		CounterpartyName:          senderUser.DisplayName(),
		SessionID:                 sessionID,
		TransactionRef:            idgen.GenerateTransactionRef(),
		Description:               req.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.accountRepo.LockForUpdate(ctx, tx, sender.ID, receiver.ID)
		if err != nil {
			return fmt.Errorf("lock accounts: %w", err)
		}
		from, to := locked[sender.ID], locked[receiver.ID]

		if from.Balance < req.Amount {
			return ErrInsufficientBalance
		}
		// The pre-check ran unlocked; a concurrent transfer may have used up the daily cap since.
		if err := s.policy.Evaluate(ctx, tx, from, tier, req.Amount, PolicyTransfer); err != nil {
			return err
		}

		if err := s.accountRepo.ApplyDelta(ctx, tx, from.ID, -req.Amount); err != nil {
			if errors.Is(err, repository.ErrBalanceNotEnough) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("debit sender: %w", err)
		}
		if err := s.accountRepo.ApplyDelta(ctx, tx, to.ID, req.Amount); err != nil {
			return fmt.Errorf("credit receiver: %w", err)
		}

		debit.CurrentBalance = from.Balance - req.Amount
		debit.BookBalance = from.BookBalance - req.Amount
		credit.CurrentBalance = to.Balance + req.Amount
		credit.BookBalance = to.BookBalance + req.Amount

		if err := s.transactionRepo.Create(ctx, tx, debit, credit); err != nil {
			return fmt.Errorf("record transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer committed",
		zap.String("session_id", sessionID),
		zap.Int64("sender_account", sender.ID),
		zap.Int64("receiver_account", receiver.ID),
		zap.Int64("amount", req.Amount))

	s.notify(senderUser, debit)
	s.notify(receiverUser, credit)

	if req.SaveBeneficiary {
		if _, err := s.beneficiaryRepo.Save(ctx, nil, req.UserID, receiver.AccountNumber, receiverUser.DisplayName()); err != nil {
			s.log.Warn("save beneficiary failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	return &TransferResult{
		SessionID:      sessionID,
		TransactionRef: debit.TransactionRef,
		Amount:         req.Amount,
		Balance:        debit.CurrentBalance,
		ReceiverNumber: receiver.AccountNumber,
		ReceiverName:   receiverUser.DisplayName(),
		Status:         debit.Status,
		CreatedAt:      debit.CreatedAt,
	}, nil
}

func (s *TransferService) notify(owner *model.User, record *model.TransactionRecord) {
	notify(s.notifier, s.log, owner, record)
}

func notify(notifier Notifier, log *zap.Logger, owner *model.User, record *model.TransactionRecord) {
	if notifier == nil {
		return
	}
	if !notifier.Notify(buildReceipt(owner, record)) {
		log.Warn("receipt dropped", zap.String("transaction_ref", record.TransactionRef))
	}
}

func validateTransfer(req *TransferRequest) error {
	if req.Amount <= 0 {
		return invalid("amount", "amount must be greater than zero")
	}
	if strings.TrimSpace(req.ReceiverName) == "" {
		return invalid("receiver_name", "receiver name is required")
	}
	if !idgen.IsAccountNumber(req.AccountNumber) {
		return invalid("account_number", "account number must be %d digits", idgen.AccountNumberLength)
	}
	return nil
}

// namesMatch compares two names as sets of lower-cased whitespace separated tokens,
// so word order and repeated spaces do not matter.
func namesMatch(declared, actual string) bool {
	a, b := nameTokens(declared), nameTokens(actual)
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for token := range a {
		if _, ok := b[token]; !ok {
			return false
		}
	}
	return true
}

func nameTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(name)) {
		tokens[field] = struct{}{}
	}
	return tokens
}
