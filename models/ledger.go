package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	CreditEntryAdd    = "add"
	CreditEntryUse    = "use"
	CreditEntryDelete = "delete"
)

// WorkCredit is a per-email running balance. Every change to it appends a
// WorkCreditEntry, so the ledger replays to the balance.
type WorkCredit struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Balance int    `json:"balance"`
}

func WorkCreditFromRecord(r *core.Record) WorkCredit {
	return WorkCredit{
		ID:      r.Id,
		Email:   r.GetString("email"),
		Balance: r.GetInt("balance"),
	}
}

type WorkCreditEntry struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Amount  int       `json:"amount"`
	Type    string    `json:"type"`
	Note    string    `json:"note"`
	Created time.Time `json:"created"`
}

func WorkCreditEntryFromRecord(r *core.Record) WorkCreditEntry {
	return WorkCreditEntry{
		ID:      r.Id,
		Email:   r.GetString("email"),
		Amount:  r.GetInt("amount"),
		Type:    r.GetString("type"),
		Note:    r.GetString("note"),
		Created: r.GetDateTime("created").Time(),
	}
}

// MealCardUsage is the audit row appended per redemption.
type MealCardUsage struct {
	ID           string    `json:"id"`
	CardID       string    `json:"card_id"`
	Email        string    `json:"email"`
	QuantityUsed int       `json:"quantity_used"`
	Note         string    `json:"note"`
	Created      time.Time `json:"created"`
}

func MealCardUsageFromRecord(r *core.Record) MealCardUsage {
	return MealCardUsage{
		ID:           r.Id,
		CardID:       r.GetString("card"),
		Email:        r.GetString("email"),
		QuantityUsed: r.GetInt("quantity_used"),
		Note:         r.GetString("note"),
		Created:      r.GetDateTime("created").Time(),
	}
}

// CardRedemption is the audit row appended per gift/custom card charge.
type CardRedemption struct {
	ID           string    `json:"id"`
	CardID       string    `json:"card_id"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Note         string    `json:"note"`
	Created      time.Time `json:"created"`
}

func CardRedemptionFromRecord(r *core.Record) CardRedemption {
	return CardRedemption{
		ID:           r.Id,
		CardID:       r.GetString("card"),
		Amount:       r.GetInt("amount"),
		BalanceAfter: r.GetInt("balance_after"),
		Note:         r.GetString("note"),
		Created:      r.GetDateTime("created").Time(),
	}
}
