package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"whitelotus/internal/storage"
	"whitelotus/models"
	"whitelotus/monitoring"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// CreditService keeps per-email work credit balances. Admins add and
// remove credit, members spend it; every mutation leaves a ledger entry.
type CreditService struct {
	app core.App
}

func NewCreditService(app core.App) *CreditService {
	return &CreditService{app: app}
}

// Balance returns the email's current credit. Emails without a balance row
// have zero credit; a store failure is not mistaken for one.
func (s *CreditService) Balance(ctx context.Context, email string) (models.WorkCredit, error) {
	record, err := s.app.FindFirstRecordByFilter("work_credits", "email = {:email}", dbx.Params{"email": email})
	switch {
	case err == nil:
		return models.WorkCreditFromRecord(record), nil
	case errors.Is(err, sql.ErrNoRows):
		return models.WorkCredit{Email: email}, nil
	default:
		return models.WorkCredit{}, fmt.Errorf("credit balance: %w", err)
	}
}

// Add credits the email, creating the balance row on first use.
func (s *CreditService) Add(ctx context.Context, email string, amount int, note string) (models.WorkCredit, error) {
	if amount <= 0 {
		return models.WorkCredit{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	return s.mutate(ctx, email, amount, models.CreditEntryAdd, note)
}

// Use spends credit. The balance may never go negative.
func (s *CreditService) Use(ctx context.Context, email string, amount int, note string) (models.WorkCredit, error) {
	if amount <= 0 {
		return models.WorkCredit{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	return s.mutate(ctx, email, -amount, models.CreditEntryUse, note)
}

// Delete removes credit without spending it, for corrections. Clamps at
// zero rather than rejecting, since the point is to clean the balance up.
func (s *CreditService) Delete(ctx context.Context, email string, amount int, note string) (models.WorkCredit, error) {
	if amount <= 0 {
		return models.WorkCredit{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	credit, err := s.Balance(ctx, email)
	if err != nil {
		return models.WorkCredit{}, err
	}
	if amount > credit.Balance {
		amount = credit.Balance
	}
	if amount == 0 {
		return credit, nil
	}
	return s.mutate(ctx, email, -amount, models.CreditEntryDelete, note)
}

// History lists the email's ledger entries, newest first.
func (s *CreditService) History(ctx context.Context, email string) ([]models.WorkCreditEntry, error) {
	records, err := s.app.FindRecordsByFilter(
		"work_credit_entries",
		"email = {:email}",
		"-created",
		0,
		0,
		dbx.Params{"email": email},
	)
	if err != nil {
		return nil, err
	}
	entries := make([]models.WorkCreditEntry, len(records))
	for i, r := range records {
		entries[i] = models.WorkCreditEntryFromRecord(r)
	}
	return entries, nil
}

// mutate applies a signed delta to the balance row with a guard on the
// value it read, then appends the ledger entry, both in one transaction.
func (s *CreditService) mutate(ctx context.Context, email string, delta int, entryType, note string) (models.WorkCredit, error) {
	record, err := s.app.FindFirstRecordByFilter("work_credits", "email = {:email}", dbx.Params{"email": email})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return models.WorkCredit{}, fmt.Errorf("credit mutate: %w", err)
		}
		if delta < 0 {
			return models.WorkCredit{Email: email}, models.ErrInsufficientCredit
		}
		return s.createBalance(email, delta, entryType, note)
	}

	credit := models.WorkCreditFromRecord(record)
	newBalance := credit.Balance + delta
	if newBalance < 0 {
		return credit, models.ErrInsufficientCredit
	}

	err = s.app.RunInTransaction(func(txApp core.App) error {
		err := storage.UpdateFieldsIf(txApp.DB(), "work_credits", credit.ID, dbx.Params{
			"balance": newBalance,
		}, "balance", credit.Balance)
		if err == models.ErrConcurrentUpdate {
			monitoring.TrackCASConflict("work_credits")
			return err
		}
		if err != nil {
			return err
		}
		return s.appendEntry(txApp, email, delta, entryType, note)
	})
	if err != nil {
		return credit, err
	}

	credit.Balance = newBalance
	return credit, nil
}

func (s *CreditService) createBalance(email string, amount int, entryType, note string) (models.WorkCredit, error) {
	var credit models.WorkCredit
	err := s.app.RunInTransaction(func(txApp core.App) error {
		collection, err := txApp.FindCollectionByNameOrId("work_credits")
		if err != nil {
			return err
		}
		row := core.NewRecord(collection)
		row.Set("email", email)
		row.Set("balance", amount)
		if err := txApp.Save(row); err != nil {
			return err
		}
		credit = models.WorkCredit{ID: row.Id, Email: email, Balance: amount}
		return s.appendEntry(txApp, email, amount, entryType, note)
	})
	return credit, err
}

func (s *CreditService) appendEntry(txApp core.App, email string, delta int, entryType, note string) error {
	collection, err := txApp.FindCollectionByNameOrId("work_credit_entries")
	if err != nil {
		return err
	}
	row := core.NewRecord(collection)
	row.Set("email", email)
	row.Set("amount", delta)
	row.Set("type", entryType)
	row.Set("note", note)
	return txApp.Save(row)
}
