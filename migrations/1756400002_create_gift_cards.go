package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		cards := core.NewBaseCollection("gift_cards")

		cards.Fields.Add(
			&core.SelectField{Name: "kind", Values: []string{"gift", "custom"}, MaxSelect: 1, Required: true},
			&core.TextField{Name: "order_id", Required: true, Max: 32},
			&core.TextField{Name: "buyer_name", Max: 200},
			&core.EmailField{Name: "buyer_email"},
			&core.EmailField{Name: "recipient_email"},
			&core.NumberField{Name: "amount", OnlyInt: true, Required: true},
			&core.NumberField{Name: "remaining_balance", OnlyInt: true},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "paid", "sent", "used", "expired"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.TextField{Name: "access_token", Required: true, Max: 64},
			&core.DateField{Name: "expires_at"},
			&core.SelectField{Name: "cycle_policy", Values: []string{"monthly_reset", "monthly_add"}, MaxSelect: 1},
			&core.NumberField{Name: "monthly_amount", OnlyInt: true},
			&core.DateField{Name: "last_reset"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		cards.AddIndex("idx_gift_cards_order_id", true, "order_id", "")
		cards.AddIndex("idx_gift_cards_access_token", true, "access_token", "")

		if err := app.Save(cards); err != nil {
			return err
		}

		redemptions := core.NewBaseCollection("card_redemptions")

		redemptions.Fields.Add(
			&core.RelationField{Name: "card", CollectionId: cards.Id, Required: true, CascadeDelete: true, MaxSelect: 1},
			&core.NumberField{Name: "amount", OnlyInt: true, Required: true},
			&core.NumberField{Name: "balance_after", OnlyInt: true},
			&core.TextField{Name: "note", Max: 500},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		redemptions.AddIndex("idx_card_redemptions_card", false, "card", "")

		return app.Save(redemptions)
	}, func(app core.App) error {
		for _, name := range []string{"card_redemptions", "gift_cards"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				continue
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
