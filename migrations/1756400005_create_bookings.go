package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		bookings := core.NewBaseCollection("bookings")

		bookings.Fields.Add(
			&core.TextField{Name: "reference_id", Required: true, Max: 120},
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.EmailField{Name: "email", Required: true},
			&core.TextField{Name: "phone", Max: 40},
			&core.DateField{Name: "date", Required: true},
			&core.TextField{Name: "start_time", Max: 10},
			&core.TextField{Name: "end_time", Max: 10},
			&core.NumberField{Name: "guests", OnlyInt: true, Required: true},
			&core.JSONField{Name: "services", MaxSize: 5000},
			&core.JSONField{Name: "details", MaxSize: 50000},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "confirmed", "cancelled"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.TextField{Name: "admin_note", Max: 2000},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		bookings.AddIndex("idx_bookings_reference_id", true, "reference_id", "")
		bookings.AddIndex("idx_bookings_date", false, "date", "")

		if err := app.Save(bookings); err != nil {
			return err
		}

		comments := core.NewBaseCollection("booking_comments")

		comments.Fields.Add(
			&core.RelationField{Name: "booking", CollectionId: bookings.Id, Required: true, CascadeDelete: true, MaxSelect: 1},
			&core.EmailField{Name: "author_email"},
			&core.TextField{Name: "body", Required: true, Max: 5000},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "accepted", "declined"},
				MaxSelect: 1,
				Required:  true,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		comments.AddIndex("idx_booking_comments_booking", false, "booking", "")

		return app.Save(comments)
	}, func(app core.App) error {
		for _, name := range []string{"booking_comments", "bookings"} {
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
