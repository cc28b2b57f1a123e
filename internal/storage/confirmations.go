package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paywatch/paywatch/internal/model"
)

// AppendConfirmation inserts a record and evicts the oldest rows beyond the
// configured cap in the same transaction, so the log never grows past it.
func (s *SQLiteStore) AppendConfirmation(ctx context.Context, record model.ConfirmationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record.PaymentID == "" {
		return fmt.Errorf("confirmation record missing payment id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO confirmations
			(payment_id, amount, reference, counterparty, source_app, confirmed_at, match_confidence, manual)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.PaymentID,
		record.Amount,
		nullable(record.Reference),
		nullable(record.CounterpartyLabel),
		nullable(record.SourceApp),
		record.ConfirmedAt,
		record.MatchConfidence,
		record.Manual,
	)
	if err != nil {
		return fmt.Errorf("failed to insert confirmation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM confirmations
		WHERE id NOT IN (
			SELECT id FROM confirmations ORDER BY id DESC LIMIT ?
		)`, s.historyCap)
	if err != nil {
		return fmt.Errorf("failed to trim confirmation log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit confirmation: %w", err)
	}

	return nil
}

// ReadRecentConfirmations returns up to limit records, most recent first.
func (s *SQLiteStore) ReadRecentConfirmations(ctx context.Context, limit int) ([]model.ConfirmationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 1 || limit > s.historyCap {
		limit = s.historyCap
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payment_id, amount, reference, counterparty, source_app,
		       confirmed_at, match_confidence, manual
		FROM confirmations
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ConfirmationRecord
	for rows.Next() {
		var (
			rec                              model.ConfirmationRecord
			reference, counterparty, sourceApp sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.PaymentID,
			&rec.Amount,
			&reference,
			&counterparty,
			&sourceApp,
			&rec.ConfirmedAt,
			&rec.MatchConfidence,
			&rec.Manual,
		); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		rec.Reference = reference.String
		rec.CounterpartyLabel = counterparty.String
		rec.SourceApp = sourceApp.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmations: %w", err)
	}

	return records, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
