package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet/internal/model"
	"wallet/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type HistoryService struct {
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

type HistoryQuery struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	Type      string `form:"type"`
	SessionID string `form:"session_id"`
	Ref       string `form:"ref"`
}

type HistoryPage struct {
	Records    []*model.TransactionRecord `json:"records"`
	TotalCount int64                      `json:"total_count"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}

// List pages through the caller's ledger rows, newest first.
func (s *HistoryService) List(ctx context.Context, userID int64, q *HistoryQuery) (*HistoryPage, error) {
	if q == nil {
		q = &HistoryQuery{}
	}
	page, pageSize := normalizePage(q.Page, q.PageSize)

	account, err := s.accountRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	filter := repository.TransactionFilter{
		Status:    strings.ToUpper(strings.TrimSpace(q.Status)),
		Type:      strings.ToUpper(strings.TrimSpace(q.Type)),
		SessionID: strings.TrimSpace(q.SessionID),
		Ref:       strings.TrimSpace(q.Ref),
	}
	records, total, err := s.transactionRepo.ListByAccount(ctx, account.ID, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if records == nil {
		records = []*model.TransactionRecord{}
	}

	return &HistoryPage{
		Records:    records,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
