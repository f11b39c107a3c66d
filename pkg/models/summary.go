package models

import "strings"

// Summary is the flattened per-account view consumed by the display widget.
// AvailableCredit mirrors Limit: the widget renders the configured ceiling,
// not limit minus balance.
type Summary struct {
	DisplayName     string   `json:"displayName"`
	AccountNumber   *string  `json:"accountNumber"`
	Balance         float64  `json:"balance"`
	Limit           *float64 `json:"limit"`
	AvailableCredit *float64 `json:"availableCredit"`
	Utilization     *float64 `json:"utilization"`
	DueDate         *string  `json:"dueDate"`
	MinimumPayment  *float64 `json:"minimumPayment,omitempty"`
	PaymentMet      bool     `json:"paymentMet"`
	Kind            Kind     `json:"kind"`
}

// SummaryOf builds the widget view of an account. The display name joins
// issuer and product unless the product already names the issuer, as with
// "Apple Card".
func SummaryOf(a Account) Summary {
	name := a.Product
	if !strings.Contains(strings.ToLower(a.Product), strings.ToLower(a.Issuer)) {
		name = a.Issuer + " " + a.Product
	}
	return Summary{
		DisplayName:     name,
		AccountNumber:   a.Last4,
		Balance:         a.Balance,
		Limit:           a.Limit,
		AvailableCredit: a.Limit,
		Utilization:     a.Utilization,
		DueDate:         a.DueDate,
		MinimumPayment:  a.MinimumPayment,
		PaymentMet:      a.PaymentMet,
		Kind:            a.Kind,
	}
}
