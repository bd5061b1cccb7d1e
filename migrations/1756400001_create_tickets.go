package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(
			&core.RelationField{Name: "event", CollectionId: events.Id, Required: true, CascadeDelete: true, MaxSelect: 1},
			&core.TextField{Name: "order_id", Required: true, Max: 32},
			&core.TextField{Name: "buyer_name", Required: true, Max: 200},
			&core.EmailField{Name: "buyer_email"},
			&core.NumberField{Name: "quantity", OnlyInt: true, Required: true},
			&core.NumberField{Name: "unit_price", OnlyInt: true},
			&core.NumberField{Name: "total_price", OnlyInt: true},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "paid", "door", "cancelled", "error"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_tickets_order_id", true, "order_id", "")
		collection.AddIndex("idx_tickets_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
