package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		cards := core.NewBaseCollection("meal_cards")

		cards.Fields.Add(
			&core.TextField{Name: "order_id", Required: true, Max: 32},
			&core.TextField{Name: "buyer_name", Max: 200},
			&core.EmailField{Name: "buyer_email", Required: true},
			&core.NumberField{Name: "meals_total", OnlyInt: true, Required: true},
			&core.NumberField{Name: "meals_remaining", OnlyInt: true},
			&core.DateField{Name: "valid_from"},
			&core.DateField{Name: "valid_until"},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "paid"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.TextField{Name: "access_token", Required: true, Max: 64},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		cards.AddIndex("idx_meal_cards_order_id", true, "order_id", "")
		cards.AddIndex("idx_meal_cards_access_token", true, "access_token", "")
		cards.AddIndex("idx_meal_cards_buyer_email", false, "buyer_email", "")

		if err := app.Save(cards); err != nil {
			return err
		}

		usages := core.NewBaseCollection("meal_card_usages")

		usages.Fields.Add(
			&core.RelationField{Name: "card", CollectionId: cards.Id, Required: true, CascadeDelete: true, MaxSelect: 1},
			&core.EmailField{Name: "email"},
			&core.NumberField{Name: "quantity_used", OnlyInt: true, Required: true},
			&core.TextField{Name: "note", Max: 500},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		usages.AddIndex("idx_meal_card_usages_card", false, "card", "")

		return app.Save(usages)
	}, func(app core.App) error {
		for _, name := range []string{"meal_card_usages", "meal_cards"} {
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
