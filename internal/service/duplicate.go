package service

import (
	"context"
	"fmt"

	"payments-register/internal/domain"
)

type LedgerReader interface {
	Contains(ctx context.Context, key domain.DuplicateKey) (bool, error)
}

// KeyOf returns the duplicate-detection key of a record.
func KeyOf(rec domain.PaymentRecord) domain.DuplicateKey {
	return domain.DuplicateKey{
		DebtorDocument: rec.DebtorDocument,
		PaymentDate:    rec.PaymentDate.Format(domain.PaymentDateLayout),
		ReceiptNumber:  rec.ReceiptNumber,
	}
}

// CheckDuplicate fails with *domain.DuplicateError when the local log
// already holds the same debtor, payment date and receipt number. The check
// and the later append are not atomic.
func CheckDuplicate(ctx context.Context, ledger LedgerReader, rec domain.PaymentRecord) error {
	key := KeyOf(rec)
	found, err := ledger.Contains(ctx, key)
	if err != nil {
		return fmt.Errorf("checking payment log: %w", err)
	}
	if found {
		return &domain.DuplicateError{Key: key}
	}
	return nil
}
