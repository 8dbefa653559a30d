package model

// Receipt is a rendered transaction notice waiting for delivery.
type Receipt struct {
	Key       string            `json:"key"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data"`
}

const (
	ReceiptDebitTemplate  = "debit.html"
	ReceiptCreditTemplate = "credit.html"
	ReceiptDebitSubject   = "Debit Transaction"
	ReceiptCreditSubject  = "Credit Transaction"
)
