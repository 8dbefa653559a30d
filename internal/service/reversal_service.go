package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet/internal/infrastructure/lock"
	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReversalService lets the receiver of a transfer send it back.
type ReversalService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	lockTTL         time.Duration
	lockRetry       time.Duration
	lockAttempts    int
	log             *zap.Logger
	notifier        Notifier
	accountRepo     *repository.AccountRepository
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
}

func NewReversalService(db *gorm.DB, redisClient *redis.Client, lockTTL time.Duration, notifier Notifier, log *zap.Logger) *ReversalService {
	return &ReversalService{
		db:              db,
		redisClient:     redisClient,
		lockTTL:         lockTTL,
		lockRetry:       100 * time.Millisecond,
		lockAttempts:    30,
		log:             log.Named("reversal"),
		notifier:        notifier,
		accountRepo:     repository.NewAccountRepository(db),
		userRepo:        repository.NewUserRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

type ReverseRequest struct {
	UserID    int64  `json:"-"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

type ReverseResult struct {
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	DebitRef  string `json:"debit_ref"`
	CreditRef string `json:"credit_ref"`
	Balance   int64  `json:"balance"`
	Message   string `json:"message,omitempty"`
}

// transferPair is the original two rows of a transfer session plus any reversal rows.
type transferPair struct {
	debit, credit                 *model.TransactionRecord
	reversalDebit, reversalCredit *model.TransactionRecord
}

func splitSession(records []*model.TransactionRecord) transferPair {
	var p transferPair
	for _, r := range records {
		switch {
		case r.Status == model.TransactionStatusSuccess && r.Type == model.TransactionTypeDebit:
			p.debit = r
		case r.Status == model.TransactionStatusSuccess && r.Type == model.TransactionTypeCredit:
			p.credit = r
		case r.Status == model.TransactionStatusRefunded && r.Type == model.TransactionTypeDebit:
			p.reversalDebit = r
		case r.Status == model.TransactionStatusRefunded && r.Type == model.TransactionTypeCredit:
			p.reversalCredit = r
		}
	}
	return p
}

func (p transferPair) reversed() bool {
	return p.reversalDebit != nil && p.reversalCredit != nil
}

func alreadyReversed(sessionID string, p transferPair) *ReverseResult {
	return &ReverseResult{
		SessionID: sessionID,
		Amount:    p.reversalDebit.Amount,
		DebitRef:  p.reversalDebit.TransactionRef,
		CreditRef: p.reversalCredit.TransactionRef,
		Balance:   p.reversalDebit.CurrentBalance,
		Message:   "transfer already reversed",
	}
}

func (s *ReversalService) Reverse(ctx context.Context, req *ReverseRequest) (*ReverseResult, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, invalid("session_id", "session id is required")
	}

	pair, err := s.loadPair(ctx, req.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	if pair.reversed() {
		return alreadyReversed(sessionID, pair), nil
	}

	reversalLock := lock.NewReversalLock(s.redisClient, sessionID, idgen.GenerateSessionID(), s.lockTTL)
	if err := reversalLock.Lock(ctx, s.lockRetry, s.lockAttempts); err != nil {
		if errors.Is(err, lock.ErrLockFailed) {
			return nil, ErrReversalBusy
		}
		return nil, fmt.Errorf("acquire reversal lock: %w", err)
	}
	defer func() {
		if err := reversalLock.Unlock(context.Background()); err != nil {
			s.log.Warn("release reversal lock failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}()

	// Re-read under the lock; another request may have finished the reversal meanwhile.
	pair, err = s.loadPair(ctx, req.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	if pair.reversed() {
		return alreadyReversed(sessionID, pair), nil
	}

	receiverUser, err := s.userRepo.GetByID(ctx, nil, pair.credit.UserID)
	if err != nil {
		return nil, fmt.Errorf("load receiver profile: %w", err)
	}
	senderUser, err := s.userRepo.GetByID(ctx, nil, pair.debit.UserID)
	if err != nil {
		return nil, fmt.Errorf("load sender profile: %w", err)
	}

	amount := pair.credit.Amount
	description := "reversal"
	if req.Reason != "" {
		description = "reversal: " + req.Reason
	}
	debit := &model.TransactionRecord{
		AccountID:                 pair.credit.AccountID,
		UserID:                    pair.credit.UserID,
		Amount:                    amount,
		Type:                      model.TransactionTypeDebit,
		Status:                    model.TransactionStatusRefunded,
		CategoryID:                pair.credit.CategoryID,
		CounterpartyAccountNumber: pair.credit.CounterpartyAccountNumber,
		CounterpartyName:          pair.credit.CounterpartyName,
		SessionID:                 sessionID,
		TransactionRef:            idgen.GenerateTransactionRef(),
		Description:               description,
	}
	credit := &model.TransactionRecord{
		AccountID:                 pair.debit.AccountID,
		UserID:                    pair.debit.UserID,
		Amount:                    amount,
		Type:                      model.TransactionTypeCredit,
		Status:                    model.TransactionStatusRefunded,
		CategoryID:                pair.debit.CategoryID,
		CounterpartyAccountNumber: pair.debit.CounterpartyAccountNumber,
		CounterpartyName:          pair.debit.CounterpartyName,
		SessionID:                 sessionID,
		TransactionRef:            idgen.GenerateTransactionRef(),
		Description:               description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.accountRepo.LockForUpdate(ctx, tx, pair.credit.AccountID, pair.debit.AccountID)
		if err != nil {
			return fmt.Errorf("lock accounts: %w", err)
		}
		from, to := locked[pair.credit.AccountID], locked[pair.debit.AccountID]

		if from.Balance < amount {
			return ErrInsufficientBalance
		}
		if err := s.accountRepo.ApplyDelta(ctx, tx, from.ID, -amount); err != nil {
			if errors.Is(err, repository.ErrBalanceNotEnough) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("debit receiver: %w", err)
		}
		if err := s.accountRepo.ApplyDelta(ctx, tx, to.ID, amount); err != nil {
			return fmt.Errorf("credit sender: %w", err)
		}

		debit.CurrentBalance = from.Balance - amount
		debit.BookBalance = from.BookBalance - amount
		credit.CurrentBalance = to.Balance + amount
		credit.BookBalance = to.BookBalance + amount
		if err := s.transactionRepo.Create(ctx, tx, debit, credit); err != nil {
			return fmt.Errorf("record reversal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer reversed",
		zap.String("session_id", sessionID),
		zap.Int64("amount", amount))

	notify(s.notifier, s.log, receiverUser, debit)
	notify(s.notifier, s.log, senderUser, credit)

	return &ReverseResult{
		SessionID: sessionID,
		Amount:    amount,
		DebitRef:  debit.TransactionRef,
		CreditRef: credit.TransactionRef,
		Balance:   debit.CurrentBalance,
	}, nil
}

// loadPair finds the session's transfer and checks that userID received it.
func (s *ReversalService) loadPair(ctx context.Context, userID int64, sessionID string) (transferPair, error) {
	records, err := s.transactionRepo.ListBySession(ctx, nil, sessionID)
	if err != nil {
		return transferPair{}, fmt.Errorf("load session: %w", err)
	}
	pair := splitSession(records)
	if pair.debit == nil || pair.credit == nil {
		return transferPair{}, ErrTransactionNotFound
	}
	if pair.credit.UserID != userID {
		return transferPair{}, ErrNotReversible
	}
	return pair, nil
}
