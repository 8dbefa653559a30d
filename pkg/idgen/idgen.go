package idgen

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Business identifiers
// ============================================================================
//
// Account number:   10 digits, first digit non-zero           e.g. 4820193375
// Transaction ref:  YYYYMMDDHHMMSS + 7 chars of [A-Z0-9]       e.g. 20240115143052K7Q2ZC1
// Session id:       UUID shared by the two rows of a transfer
//
// ============================================================================

const (
	AccountNumberLength = 10
	refSuffixLength     = 7
	refAlphabet         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refTimeLayout       = "20060102150405"
)

var accountNumberSpan = big.NewInt(9_000_000_000)

// GenerateAccountNumber returns a random fixed-width numeric account number.
func GenerateAccountNumber() string {
	n, err := rand.Int(rand.Reader, accountNumberSpan)
	if err != nil {
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	return big.NewInt(0).Add(n, big.NewInt(1_000_000_000)).String()
}

// GenerateTransactionRef returns a human-shareable ledger row reference.
func GenerateTransactionRef() string {
	return generateTransactionRef(time.Now())
}

func generateTransactionRef(now time.Time) string {
	var b strings.Builder
	b.Grow(len(refTimeLayout) + refSuffixLength)
	b.WriteString(now.Format(refTimeLayout))

	max := big.NewInt(int64(len(refAlphabet)))
	for i := 0; i < refSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("idgen: crypto/rand unavailable: " + err.Error())
		}
		b.WriteByte(refAlphabet[n.Int64()])
	}
	return b.String()
}

// GenerateSessionID correlates the rows written by one balance-moving operation.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsAccountNumber reports whether s has the shape of an account number.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
