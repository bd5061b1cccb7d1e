package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		credits := core.NewBaseCollection("work_credits")

		credits.Fields.Add(
			&core.EmailField{Name: "email", Required: true},
			&core.NumberField{Name: "balance", OnlyInt: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		credits.AddIndex("idx_work_credits_email", true, "email", "")

		if err := app.Save(credits); err != nil {
			return err
		}

		entries := core.NewBaseCollection("work_credit_entries")

		entries.Fields.Add(
			&core.EmailField{Name: "email", Required: true},
			&core.NumberField{Name: "amount", OnlyInt: true, Required: true},
			&core.SelectField{
				Name:      "type",
				Values:    []string{"add", "use", "delete"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.TextField{Name: "note", Max: 500},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		entries.AddIndex("idx_work_credit_entries_email", false, "email", "")

		return app.Save(entries)
	}, func(app core.App) error {
		for _, name := range []string{"work_credit_entries", "work_credits"} {
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
