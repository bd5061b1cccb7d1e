package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{Name: "slug", Required: true, Max: 120},
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.SelectField{Name: "category", Values: []string{"event", "tour"}, MaxSelect: 1},
			&core.TextField{Name: "description", Max: 10000},
			&core.DateField{Name: "starts_at", Required: true},
			&core.NumberField{Name: "duration_minutes", OnlyInt: true},
			&core.NumberField{Name: "price", OnlyInt: true, Required: true},
			// capacity 0 means unlimited
			&core.NumberField{Name: "capacity", OnlyInt: true},
			&core.BoolField{Name: "sold_out"},
			&core.EmailField{Name: "host_email"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_slug", true, "slug", "")
		collection.AddIndex("idx_events_starts_at", false, "starts_at", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
