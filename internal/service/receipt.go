package service

import (
	"strings"

	"wallet/internal/model"

	"github.com/shopspring/decimal"
)

const receiptTimeLayout = "02 Jan 2006, 15:04"

// formatAmount renders minor units as a grouped major amount, e.g. 123456 -> "1,234.56".
func formatAmount(minor int64) string {
	s := decimal.New(minor, -2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// buildReceipt addresses a record's receipt to the account owner.
func buildReceipt(owner *model.User, record *model.TransactionRecord) *model.Receipt {
	subject, template := model.ReceiptCreditSubject, model.ReceiptCreditTemplate
	if record.Type == model.TransactionTypeDebit {
		subject, template = model.ReceiptDebitSubject, model.ReceiptDebitTemplate
	}

	return &model.Receipt{
		Key:       record.TransactionRef,
		Recipient: owner.Email,
		Subject:   subject,
		Template:  template,
		Data: map[string]string{
			"name":                owner.DisplayName(),
			"amount":              formatAmount(record.Amount),
			"transaction_type":    titleCase(record.Type),
			"transaction_status":  titleCase(record.Status),
			"counterparty_name":   record.CounterpartyName,
			"counterparty_number": record.CounterpartyAccountNumber,
			"transaction_ref":     record.TransactionRef,
			"session_id":          record.SessionID,
			"current_balance":     formatAmount(record.CurrentBalance),
			"description":         record.Description,
			"date":                record.CreatedAt.Format(receiptTimeLayout),
		},
	}
}
