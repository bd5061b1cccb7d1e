package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	TicketStatusPending   = "pending"
	TicketStatusPaid      = "paid"
	TicketStatusDoor      = "door"
	TicketStatusCancelled = "cancelled"
	TicketStatusError     = "error"
)

type Ticket struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int       `json:"unit_price"`
	TotalPrice int       `json:"total_price"`
	Status     string    `json:"status"`
	Created    time.Time `json:"created"`
}

func TicketFromRecord(r *core.Record) Ticket {
	return Ticket{
		ID:         r.Id,
		EventID:    r.GetString("event"),
		OrderID:    r.GetString("order_id"),
		BuyerName:  r.GetString("buyer_name"),
		BuyerEmail: r.GetString("buyer_email"),
		Quantity:   r.GetInt("quantity"),
		UnitPrice:  r.GetInt("unit_price"),
		TotalPrice: r.GetInt("total_price"),
		Status:     r.GetString("status"),
		Created:    r.GetDateTime("created").Time(),
	}
}

func TicketsFromRecords(records []*core.Record) []Ticket {
	tickets := make([]Ticket, len(records))
	for i, r := range records {
		tickets[i] = TicketFromRecord(r)
	}
	return tickets
}
