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
)

type MealService struct {
	app          core.App
	gw           *gateway.Gateway
	notifier     *Notifier
	mealPrice    int
	redeemMax    int
	validity     time.Duration
	staffPINHash string
}

func NewMealService(app core.App, gw *gateway.Gateway, notifier *Notifier, mealPrice, redeemMax int, validity time.Duration, staffPINHash string) *MealService {
	return &MealService{
		app:          app,
		gw:           gw,
		notifier:     notifier,
		mealPrice:    mealPrice,
		redeemMax:    redeemMax,
		validity:     validity,
		staffPINHash: staffPINHash,
	}
}

type MealCheckoutRequest struct {
	Meals      int    `json:"meals"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

func (s *MealService) StartCheckout(ctx context.Context, req MealCheckoutRequest) (*gateway.Checkout, error) {
	if req.Meals <= 0 {
		return nil, fmt.Errorf("%w: meal count must be positive", models.ErrValidation)
	}
	if req.BuyerName == "" || req.BuyerEmail == "" {
		return nil, fmt.Errorf("%w: buyer name and email are required", models.ErrValidation)
	}

	orderID, err := utils.NewOrderID()
	if err != nil {
		return nil, err
	}
	token, err := utils.NewAccessToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	collection, err := s.app.FindCollectionByNameOrId("meal_cards")
	if err != nil {
		return nil, err
	}
	card := core.NewRecord(collection)
	card.Set("order_id", orderID)
	card.Set("buyer_name", req.BuyerName)
	card.Set("buyer_email", req.BuyerEmail)
	card.Set("meals_total", req.Meals)
	card.Set("meals_remaining", req.Meals)
	card.Set("valid_from", now)
	card.Set("valid_until", now.Add(s.validity))
	card.Set("status", models.MealCardStatusPending)
	card.Set("access_token", token)
	if err := s.app.Save(card); err != nil {
		return nil, fmt.Errorf("meal checkout: save pending card: %w", err)
	}

	checkout := s.gw.SignedCheckout(gateway.CheckoutRequest{
		Flow:            gateway.FlowMealCard,
		OrderID:         orderID,
		Amount:          req.Meals * s.mealPrice,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		ItemDescription: fmt.Sprintf("meal card, %d meals", req.Meals),
		ItemCount:       req.Meals,
	})

	monitoring.TrackOrderStarted(string(gateway.FlowMealCard))
	return &checkout, nil
}

func (s *MealService) ConfirmPayment(ctx context.Context, orderID, amount, currency, receivedHash string) error {
	if !s.gw.VerifyCallback(orderID, amount, currency, receivedHash) {
		return fmt.Errorf("%w: payment signature mismatch", models.ErrForbidden)
	}

	record, err := s.app.FindFirstRecordByFilter("meal_cards", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	card := models.MealCardFromRecord(record)

	if gateway.FormatAmount(card.MealsTotal*s.mealPrice) != amount {
		return fmt.Errorf("%w: amount mismatch for order %s", models.ErrForbidden, orderID)
	}

	err = storage.UpdateIf(s.app.DB(), "meal_cards", card.ID, "status", models.MealCardStatusPending, models.MealCardStatusPaid)
	if err == models.ErrConcurrentUpdate {
		monitoring.TrackCASConflict("meal_cards")
		fresh, readErr := s.app.FindRecordById("meal_cards", card.ID)
		if readErr == nil && fresh.GetString("status") == models.MealCardStatusPaid {
			return nil
		}
		return models.ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}

	monitoring.TrackOrderPaid(string(gateway.FlowMealCard))
	go s.deliverCard(card)
	go s.notifier.Publish("meal_card_paid", map[string]any{
		"order_id": orderID,
		"meals":    card.MealsTotal,
	})
	return nil
}

// ClosePayment drops the pending meal card behind an abandoned or failed
// checkout. Settled cards are left alone.
func (s *MealService) ClosePayment(ctx context.Context, orderID, reason string) error {
	record, err := s.app.FindFirstRecordByFilter("meal_cards", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	if record.GetString("status") != models.MealCardStatusPending {
		return nil
	}
	slog.Info("meal card order closed", "order", orderID, "reason", reason)
	return s.app.Delete(record)
}

// redeemable checks a card snapshot against a redemption request. It never
// touches the store, so a rejected request leaves the card as it was read.
func redeemable(card models.MealCard, qty int, now time.Time) error {
	switch {
	case card.Status != models.MealCardStatusPaid:
		return models.ErrCardNotActive
	case card.ExpiredAt(now):
		return models.ErrExpired
	case qty > card.MealsRemaining:
		return models.ErrInsufficientBalance
	}
	return nil
}

// RedeemByToken deducts meals from a single card presented at the counter.
// The staff PIN gates the operation; the decrement and the usage row land
// in one transaction so the history never disagrees with the balance.
func (s *MealService) RedeemByToken(ctx context.Context, token string, qty int, staffPIN, note string) (models.MealCard, error) {
	if qty < 1 || qty > s.redeemMax {
		return models.MealCard{}, fmt.Errorf("%w: quantity must be between 1 and %d", models.ErrInvalidQuantity, s.redeemMax)
	}
	if !gateway.CompareStaffPIN(s.staffPINHash, staffPIN) {
		return models.MealCard{}, fmt.Errorf("%w: staff PIN", models.ErrUnauthorized)
	}

	record, err := s.app.FindFirstRecordByFilter("meal_cards", "access_token = {:token}", dbx.Params{"token": token})
	if err != nil {
		return models.MealCard{}, fmt.Errorf("%w: meal card", models.ErrNotFound)
	}
	card := models.MealCardFromRecord(record)

	if err := redeemable(card, qty, time.Now()); err != nil {
		return card, err
	}

	err = s.app.RunInTransaction(func(txApp core.App) error {
		if err := s.decrementCard(txApp, card, qty); err != nil {
			return err
		}
		return s.appendUsage(txApp, card.ID, card.BuyerEmail, qty, note)
	})
	if err != nil {
		return card, err
	}

	card.MealsRemaining -= qty
	return card, nil
}

// RedeemForEmail spends meals across every usable card the caller owns,
// oldest first. Each card is decremented with its own guard; a conflict on
// any card aborts the whole redemption with nothing committed.
func (s *MealService) RedeemForEmail(ctx context.Context, email string, qty int, note string) ([]models.MealAllocation, error) {
	records, err := s.app.FindRecordsByFilter(
		"meal_cards",
		"buyer_email = {:email} && status = {:status}",
		"+created",
		0,
		0,
		dbx.Params{"email": email, "status": models.MealCardStatusPaid},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cards := make([]models.MealCard, len(records))
	byID := make(map[string]models.MealCard, len(records))
	for i, r := range records {
		cards[i] = models.MealCardFromRecord(r)
		byID[cards[i].ID] = cards[i]
	}

	plan, err := models.AllocateMeals(cards, qty, now)
	if err != nil {
		return nil, err
	}

	err = s.app.RunInTransaction(func(txApp core.App) error {
		for _, alloc := range plan {
			card := byID[alloc.CardID]
			if err := s.decrementCard(txApp, card, alloc.Use); err != nil {
				return err
			}
			if err := s.appendUsage(txApp, card.ID, email, alloc.Use, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Usage lists a card's redemption rows, newest first.
func (s *MealService) Usage(ctx context.Context, cardID string) ([]models.MealCardUsage, error) {
	records, err := s.app.FindRecordsByFilter(
		"meal_card_usages",
		"card = {:card}",
		"-created",
		0,
		0,
		dbx.Params{"card": cardID},
	)
	if err != nil {
		return nil, err
	}
	rows := make([]models.MealCardUsage, len(records))
	for i, r := range records {
		rows[i] = models.MealCardUsageFromRecord(r)
	}
	return rows, nil
}

// CardsForEmail returns the caller's cards, oldest first, for the
// self-service balance view.
func (s *MealService) CardsForEmail(ctx context.Context, email string) ([]models.MealCard, error) {
	records, err := s.app.FindRecordsByFilter(
		"meal_cards",
		"buyer_email = {:email}",
		"+created",
		0,
		0,
		dbx.Params{"email": email},
	)
	if err != nil {
		return nil, err
	}
	cards := make([]models.MealCard, len(records))
	for i, r := range records {
		cards[i] = models.MealCardFromRecord(r)
	}
	return cards, nil
}

func (s *MealService) decrementCard(txApp core.App, card models.MealCard, use int) error {
	err := storage.UpdateFieldsIf(txApp.DB(), "meal_cards", card.ID, dbx.Params{
		"meals_remaining": card.MealsRemaining - use,
	}, "meals_remaining", card.MealsRemaining)
	if err == models.ErrConcurrentUpdate {
		monitoring.TrackCASConflict("meal_cards")
	}
	return err
}

func (s *MealService) appendUsage(txApp core.App, cardID, email string, qty int, note string) error {
	collection, err := txApp.FindCollectionByNameOrId("meal_card_usages")
	if err != nil {
		return err
	}
	row := core.NewRecord(collection)
	row.Set("card", cardID)
	row.Set("email", email)
	row.Set("quantity_used", qty)
	row.Set("note", note)
	return txApp.Save(row)
}

func (s *MealService) deliverCard(card models.MealCard) {
	html := fmt.Sprintf(
		"<p>Your meal card for %d meals is ready.</p><p>Card code: <strong>%s</strong></p><p>Valid until %s.</p>",
		card.MealsTotal, card.AccessToken, card.ValidUntil.Format("2006-01-02"),
	)
	s.notifier.SendMail(card.BuyerEmail, "Your meal card from Mama Reykjavik", html)
	slog.Info("meal card delivered", "card", card.ID, "meals", card.MealsTotal)
}
