package models

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"

	// OrderStatusRejected is declared for parity with the wire format but is
	// never produced by the engine: invalid orders fail at construction and
	// are never admitted to the book.
	OrderStatusRejected OrderStatus = "REJECTED"
)

func (status OrderStatus) IsSettled() bool {
	return status != OrderStatusPending
}
