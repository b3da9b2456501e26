package domain

import "time"

type OrderType string

const (
	OrderDineIn   OrderType = "DINE_IN"
	OrderTakeAway OrderType = "TAKE_AWAY"
	OrderDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeAway, OrderDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusCreated       OrderStatus = "CREATED"
	StatusConfirmed     OrderStatus = "CONFIRMED"
	StatusInPreparation OrderStatus = "IN_PREPARATION"
	StatusCompleted     OrderStatus = "COMPLETED"
	StatusDelivered     OrderStatus = "DELIVERED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusConfirmed, StatusInPreparation, StatusCompleted, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether the status freezes the order. A delivered order
// and its lines can no longer be modified.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered
}

// vatRate is the flat tax multiplier applied on top of the pre-tax total.
const vatRate = 0.20

// OrderLine is one dish x quantity entry of an order. Name and unit price are
// captured at commit time so totals survive later catalog changes.
type OrderLine struct {
	DishID    string
	DishName  string
	UnitPrice float64
	Quantity  int
}

// Order is a committed restaurant order. The reference is assigned once at
// commit time and never reused.
type Order struct {
	ID        string
	Reference string
	Type      OrderType
	Status    OrderStatus
	CreatedAt time.Time
	Lines     []OrderLine
}

// TotalExclTax sums unit price x quantity over all lines.
func (o Order) TotalExclTax() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// TotalInclTax applies the flat VAT rate to the pre-tax total.
func (o Order) TotalInclTax() float64 {
	return o.TotalExclTax() * (1 + vatRate)
}
