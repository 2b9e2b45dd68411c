package models

import (
	"database/sql/driver"
	"fmt"
	"math"

	"github.com/go-playground/validator"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProduction OrderStatus = "production"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProduction: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

func (l *OrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = OrderStatus(v)
	case []byte:
		*l = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}

func (l OrderStatus) Value() (driver.Value, error) {
	return string(l), nil
}

func (l OrderStatus) Valid() bool {
	_, ok := orderStatusRank[l]
	return ok
}

// CanAdvanceTo reports whether next is a later stage than l. Orders move forward only.
func (l OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := orderStatusRank[l]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	return ok && to > from
}

func ValidateOrderStatus(fl validator.FieldLevel) bool {
	return OrderStatus(fl.Field().String()).Valid()
}

type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=60"`
}

type Order struct {
	RecordModel
	UserID          string                              `gorm:"index" json:"userId"`
	Items           datatypes.JSONSlice[SavedDesign]    `json:"items"`
	TotalAmount     float64                             `json:"totalAmount"`
	Status          OrderStatus                         `gorm:"type:varchar(16);default:pending" json:"status"`
	ShippingAddress datatypes.JSONType[ShippingAddress] `json:"shippingAddress"`
}

func (Order) TableName() string {
	return "orders"
}

type CreateOrderIn struct {
	UserID          string          `json:"userId" validate:"required,max=64"`
	Items           []SavedDesign   `json:"items" validate:"required,min=1,max=50"`
	TotalAmount     *float64        `json:"totalAmount" validate:"omitempty,gte=0"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

type UpdateOrderStatusIn struct {
	Status OrderStatus `json:"status" validate:"required,orderstatus"`
}

// OrderScope selects whose orders are listed. An empty UserID means every order.
type OrderScope struct {
	UserID string
}

func AllOrders() OrderScope {
	return OrderScope{}
}

func OrdersOf(userID string) OrderScope {
	return OrderScope{UserID: userID}
}

func (s OrderScope) All() bool {
	return s.UserID == ""
}

const (
	UnitPrice = 125.00
	TaxRate   = 0.10
)

type OrderQuote struct {
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// QuoteOrder prices made-on-demand garments: flat unit price, free shipping, estimated tax.
func QuoteOrder(itemCount int) OrderQuote {
	subtotal := UnitPrice * float64(itemCount)
	tax := roundCents(subtotal * TaxRate)
	return OrderQuote{
		Items:    itemCount,
		Subtotal: subtotal,
		Shipping: 0,
		Tax:      tax,
		Total:    roundCents(subtotal + tax),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
