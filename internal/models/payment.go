package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentHeader is the column layout of an employee payments table
var PaymentHeader = []string{"Tel", "Formation", "Prix", "Montant", "Date", "Reste"}

// Payment is one installment paid by a client
type Payment struct {
	Row       int             `json:"row"`
	Employee  string          `json:"employee"`
	PhoneKey  string          `json:"phone_key"`
	Formation string          `json:"formation"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Date      *time.Time      `json:"date,omitempty"`
	Remaining decimal.Decimal `json:"remaining"`
}

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	Phone     string          `json:"phone" validate:"required"`
	Formation string          `json:"formation"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
}

// PaymentFilter narrows the admin view of all payments
type PaymentFilter struct {
	Employees  []string
	Formations []string
	From       *time.Time
	To         *time.Time
	SortBy     string
	Ascending  bool
}

// PaymentList is a filtered set of payments with totals
type PaymentList struct {
	Payments       []Payment       `json:"payments"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}
