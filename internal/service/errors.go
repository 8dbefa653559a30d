package service

import (
	"errors"
	"fmt"
)

// ValidationError is a malformed request. Nothing has been touched when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type DenialCode int

const (
	DenyAccountNotFound DenialCode = iota + 1
	DenySelfTransfer
	DenyNameMismatch
	DenyInsufficientBalance
	DenyTransferLimit
	DenyDailyLimit
	DenyMaxBalance
	DenyTransactionNotFound
	DenyNotReversible
)

// DenialError is a well-formed request refused by a business rule. Reason is shown to the caller.
type DenialError struct {
	Code   DenialCode
	Reason string
}

func (e *DenialError) Error() string {
	return e.Reason
}

// Is matches denials by code so that errors.Is(err, ErrMaxBalanceExceeded) holds for any reason text.
func (e *DenialError) Is(target error) bool {
	t, ok := target.(*DenialError)
	return ok && t.Code == e.Code
}

var (
	ErrAccountNotFound      = &DenialError{Code: DenyAccountNotFound, Reason: "Account does not exist"}
	ErrSelfTransfer         = &DenialError{Code: DenySelfTransfer, Reason: "Cannot transfer to your own account"}
	ErrNameMismatch         = &DenialError{Code: DenyNameMismatch, Reason: "The name sent does not belong to the account number"}
	ErrInsufficientBalance  = &DenialError{Code: DenyInsufficientBalance, Reason: "Insufficient balance"}
	ErrTransferOnceExceeded = &DenialError{Code: DenyTransferLimit, Reason: "Transfer amount exceeds the maximum allowed for this level"}
	ErrDailyLimitExceeded   = &DenialError{Code: DenyDailyLimit, Reason: "Daily transfer limit exceeded"}
	ErrMaxBalanceExceeded   = &DenialError{Code: DenyMaxBalance, Reason: "Maximum balance exceeded"}
	ErrTransactionNotFound  = &DenialError{Code: DenyTransactionNotFound, Reason: "Transaction does not exist"}
	ErrNotReversible        = &DenialError{Code: DenyNotReversible, Reason: "Only the receiver of a successful transfer can reverse it"}
)

var (
	// ErrPolicyEvaluation means the limit policy could not decide. Callers treat it as a denial.
	ErrPolicyEvaluation    = errors.New("limit policy evaluation failed")
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrReversalBusy        = errors.New("reversal already in progress")
)

func policyFailure(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPolicyEvaluation, step, err)
}
