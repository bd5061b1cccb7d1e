package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"whitelotus/internal/gateway"
	"whitelotus/internal/storage"
	"whitelotus/models"
	"whitelotus/monitoring"
	"whitelotus/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type CardService struct {
	app      core.App
	gw       *gateway.Gateway
	notifier *Notifier
}

func NewCardService(app core.App, gw *gateway.Gateway, notifier *Notifier) *CardService {
	return &CardService{app: app, gw: gw, notifier: notifier}
}

type CardCheckoutRequest struct {
	Kind           string `json:"kind"` // gift or custom
	Amount         int    `json:"amount"`
	BuyerName      string `json:"buyer_name"`
	BuyerEmail     string `json:"buyer_email"`
	RecipientEmail string `json:"recipient_email"`
	// Custom cards only.
	CyclePolicy   string `json:"cycle_policy"`
	MonthlyAmount int    `json:"monthly_amount"`
	ExpiresAt     string `json:"expires_at"`
}

// StartCheckout records a pending card and returns the signed gateway
// form. The card's balance only becomes spendable via ConfirmPayment.
func (s *CardService) StartCheckout(ctx context.Context, req CardCheckoutRequest) (*gateway.Checkout, error) {
	if req.Kind != models.CardKindGift && req.Kind != models.CardKindCustom {
		return nil, fmt.Errorf("%w: unknown card kind %q", models.ErrValidation, req.Kind)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	if req.BuyerName == "" || req.BuyerEmail == "" {
		return nil, fmt.Errorf("%w: buyer name and email are required", models.ErrValidation)
	}
	switch req.CyclePolicy {
	case models.CyclePolicyNone, models.CyclePolicyMonthlyReset:
	case models.CyclePolicyMonthlyAdd:
		if req.MonthlyAmount <= 0 {
			return nil, fmt.Errorf("%w: monthly amount must be positive", models.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown cycle policy %q", models.ErrValidation, req.CyclePolicy)
	}

	orderID, err := utils.NewOrderID()
	if err != nil {
		return nil, err
	}
	token, err := utils.NewAccessToken()
	if err != nil {
		return nil, err
	}

	collection, err := s.app.FindCollectionByNameOrId("gift_cards")
	if err != nil {
		return nil, err
	}
	card := core.NewRecord(collection)
	card.Set("kind", req.Kind)
	card.Set("order_id", orderID)
	card.Set("buyer_name", req.BuyerName)
	card.Set("buyer_email", req.BuyerEmail)
	card.Set("recipient_email", req.RecipientEmail)
	card.Set("amount", req.Amount)
	card.Set("remaining_balance", req.Amount)
	card.Set("status", models.CardStatusPending)
	card.Set("access_token", token)
	card.Set("cycle_policy", req.CyclePolicy)
	card.Set("monthly_amount", req.MonthlyAmount)
	card.Set("last_reset", types.NowDateTime())
	if req.ExpiresAt != "" {
		card.Set("expires_at", req.ExpiresAt)
	}
	if err := s.app.Save(card); err != nil {
		return nil, fmt.Errorf("card checkout: save pending card: %w", err)
	}

	checkout := s.gw.SignedCheckout(gateway.CheckoutRequest{
		Flow:            gateway.FlowGiftCard,
		OrderID:         orderID,
		Amount:          req.Amount,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		ItemDescription: req.Kind + " card",
	})

	monitoring.TrackOrderStarted(string(gateway.FlowGiftCard))
	return &checkout, nil
}

// ConfirmPayment settles a card order: pending flips to paid with a
// conditional update, then the access token goes out by email and the
// status moves to sent.
func (s *CardService) ConfirmPayment(ctx context.Context, orderID, amount, currency, receivedHash string) error {
	if !s.gw.VerifyCallback(orderID, amount, currency, receivedHash) {
		return fmt.Errorf("%w: payment signature mismatch", models.ErrForbidden)
	}

	record, err := s.app.FindFirstRecordByFilter("gift_cards", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	card := models.GiftCardFromRecord(record)

	if gateway.FormatAmount(card.Amount) != amount {
		return fmt.Errorf("%w: amount mismatch for order %s", models.ErrForbidden, orderID)
	}

	err = storage.UpdateIf(s.app.DB(), "gift_cards", card.ID, "status", models.CardStatusPending, models.CardStatusPaid)
	if err == models.ErrConcurrentUpdate {
		monitoring.TrackCASConflict("gift_cards")
		fresh, readErr := s.app.FindRecordById("gift_cards", card.ID)
		if readErr == nil && fresh.GetString("status") != models.CardStatusPending {
			return nil
		}
		return models.ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}

	monitoring.TrackOrderPaid(string(gateway.FlowGiftCard))
	go s.deliverCard(card)
	go s.notifier.Publish("card_paid", map[string]any{
		"order_id": orderID,
		"kind":     card.Kind,
		"amount":   card.Amount,
	})
	return nil
}

// ClosePayment drops the pending card behind an abandoned or failed
// checkout. Settled cards are left alone.
func (s *CardService) ClosePayment(ctx context.Context, orderID, reason string) error {
	record, err := s.app.FindFirstRecordByFilter("gift_cards", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	if record.GetString("status") != models.CardStatusPending {
		return nil
	}
	slog.Info("card order closed", "order", orderID, "reason", reason)
	return s.app.Delete(record)
}

// Lookup finds a card by its capability token, applying the monthly cycle
// policy and the expiration date before answering.
func (s *CardService) Lookup(ctx context.Context, token string) (models.GiftCard, error) {
	record, err := s.app.FindFirstRecordByFilter("gift_cards", "access_token = {:token}", dbx.Params{"token": token})
	if err != nil {
		return models.GiftCard{}, fmt.Errorf("%w: card", models.ErrNotFound)
	}
	return s.refresh(models.GiftCardFromRecord(record), time.Now())
}

// refresh persists whatever the cycle policy and expiration date change
// about the card. A lost race on the persist means another request already
// refreshed it, so the fresh row is read back instead of failing.
func (s *CardService) refresh(card models.GiftCard, now time.Time) (models.GiftCard, error) {
	updated, changed := card.ApplyCycle(now)
	if changed {
		err := storage.UpdateFieldsIf(s.app.DB(), "gift_cards", card.ID, dbx.Params{
			"remaining_balance": updated.RemainingBalance,
			"status":            updated.Status,
			"last_reset":        updated.LastReset.UTC().Format(types.DefaultDateLayout),
		}, "remaining_balance", card.RemainingBalance)
		if err == models.ErrConcurrentUpdate {
			monitoring.TrackCASConflict("gift_cards")
			fresh, readErr := s.app.FindRecordById("gift_cards", card.ID)
			if readErr != nil {
				return models.GiftCard{}, readErr
			}
			return models.GiftCardFromRecord(fresh), nil
		}
		if err != nil {
			return models.GiftCard{}, err
		}
		card = updated
	}

	if card.ExpiredAt(now) && card.Status != models.CardStatusExpired {
		err := storage.UpdateIf(s.app.DB(), "gift_cards", card.ID, "status", card.Status, models.CardStatusExpired)
		switch {
		case err == nil:
			card.Status = models.CardStatusExpired
		case err == models.ErrConcurrentUpdate:
			monitoring.TrackCASConflict("gift_cards")
			if fresh, readErr := s.app.FindRecordById("gift_cards", card.ID); readErr == nil {
				card = models.GiftCardFromRecord(fresh)
			}
		default:
			slog.Error("card refresh: mark expired", "card", card.ID, "error", err)
		}
	}

	return card, nil
}

// Charge redeems amount from the card. The write is keyed on the balance
// read above it; a zero-row update is reported as a conflict for the
// caller to surface, never silently retried.
func (s *CardService) Charge(ctx context.Context, token string, amount int, note string) (models.GiftCard, error) {
	if amount <= 0 {
		return models.GiftCard{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}

	card, err := s.Lookup(ctx, token)
	if err != nil {
		return models.GiftCard{}, err
	}

	now := time.Now()
	switch {
	case card.Status == models.CardStatusExpired || card.ExpiredAt(now):
		monitoring.TrackCardCharge(card.Kind, "expired")
		return card, models.ErrExpired
	case !card.Active():
		monitoring.TrackCardCharge(card.Kind, "not_active")
		return card, models.ErrCardNotActive
	case amount > card.RemainingBalance:
		monitoring.TrackCardCharge(card.Kind, "insufficient")
		return card, models.ErrInsufficientBalance
	}

	newBalance := card.RemainingBalance - amount
	newStatus := card.Status
	if newBalance == 0 {
		newStatus = models.CardStatusUsed
	}

	err = storage.UpdateFieldsIf(s.app.DB(), "gift_cards", card.ID, dbx.Params{
		"remaining_balance": newBalance,
		"status":            newStatus,
	}, "remaining_balance", card.RemainingBalance)
	if err == models.ErrConcurrentUpdate {
		monitoring.TrackCASConflict("gift_cards")
		monitoring.TrackCardCharge(card.Kind, "conflict")
		// Another request moved the balance between our read and write.
		// Re-read so the conflict response carries the current state.
		if fresh, readErr := s.app.FindRecordById("gift_cards", card.ID); readErr == nil {
			card = models.GiftCardFromRecord(fresh)
		}
		return card, models.ErrConcurrentUpdate
	}
	if err != nil {
		return card, err
	}

	card.RemainingBalance = newBalance
	card.Status = newStatus
	monitoring.TrackCardCharge(card.Kind, "ok")

	if err := s.appendRedemption(card.ID, amount, newBalance, note); err != nil {
		// The charge itself stuck; a missing audit row is recoverable.
		slog.Error("card charge: append redemption", "card", card.ID, "error", err)
	}

	return card, nil
}

// Redemptions lists a card's audit rows, newest first.
func (s *CardService) Redemptions(ctx context.Context, cardID string) ([]models.CardRedemption, error) {
	records, err := s.app.FindRecordsByFilter(
		"card_redemptions",
		"card = {:card}",
		"-created",
		0,
		0,
		dbx.Params{"card": cardID},
	)
	if err != nil {
		return nil, err
	}
	rows := make([]models.CardRedemption, len(records))
	for i, r := range records {
		rows[i] = models.CardRedemptionFromRecord(r)
	}
	return rows, nil
}

// RunCyclePass refreshes every card with a monthly policy. Registered as a
// daily job so dormant cards do not depend on someone looking them up.
func (s *CardService) RunCyclePass(ctx context.Context) {
	records, err := s.app.FindRecordsByFilter(
		"gift_cards",
		"cycle_policy != ''",
		"",
		0,
		0,
	)
	if err != nil {
		slog.Error("card cycle pass: list cards", "error", err)
		return
	}
	now := time.Now()
	for _, record := range records {
		if _, err := s.refresh(models.GiftCardFromRecord(record), now); err != nil {
			slog.Error("card cycle pass: refresh", "card", record.Id, "error", err)
		}
	}
}

func (s *CardService) appendRedemption(cardID string, amount, balanceAfter int, note string) error {
	collection, err := s.app.FindCollectionByNameOrId("card_redemptions")
	if err != nil {
		return err
	}
	row := core.NewRecord(collection)
	row.Set("card", cardID)
	row.Set("amount", amount)
	row.Set("balance_after", balanceAfter)
	row.Set("note", note)
	return s.app.Save(row)
}

func (s *CardService) deliverCard(card models.GiftCard) {
	to := card.RecipientEmail
	if to == "" {
		to = card.BuyerEmail
	}
	html := fmt.Sprintf(
		"<p>You have received a %s card worth %d kr.</p><p>Your card code: <strong>%s</strong></p>",
		card.Kind, card.Amount, card.AccessToken,
	)
	s.notifier.SendMail(to, "Your card from Mama Reykjavik", html)

	err := storage.UpdateIf(s.app.DB(), "gift_cards", card.ID, "status", models.CardStatusPaid, models.CardStatusSent)
	if err != nil && err != models.ErrConcurrentUpdate {
		slog.Error("card delivery: mark sent", "card", card.ID, "error", err)
	}
}
