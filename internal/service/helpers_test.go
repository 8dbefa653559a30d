package service

import (
	"sync"
	"testing"

	"wallet/internal/config"
	"wallet/internal/model"
	"wallet/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []*model.Receipt
}

func (n *recordingNotifier) Notify(receipt *model.Receipt) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, receipt)
	return true
}

func (n *recordingNotifier) all() []*model.Receipt {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*model.Receipt(nil), n.receipts...)
}

var testBusiness = &config.BusinessConfig{
	DefaultBalance: 500_00,
	DefaultTier:    model.TierLevel1,
}

func newTransferService(t *testing.T) (*gorm.DB, *TransferService, *recordingNotifier) {
	t.Helper()
	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}
	return db, NewTransferService(db, notifier, zap.NewNop()), notifier
}

func recordsBySession(t *testing.T, db *gorm.DB, sessionID string) []*model.TransactionRecord {
	t.Helper()
	var records []*model.TransactionRecord
	require.NoError(t, db.Where("session_id = ?", sessionID).Order("id ASC").Find(&records).Error)
	return records
}

func countRecords(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.TransactionRecord{}).Count(&n).Error)
	return n
}
