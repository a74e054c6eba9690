package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/internal/cart"
	pkgcheckout "github.com/staybook/staybook-backend/pkg/checkout"
)

// Identity is the authenticated guest placing the order.
type Identity struct {
	UserID string
	Email  string
}

// SummaryLine is one cart line as shown on the order summary.
type SummaryLine struct {
	RoomID       string
	Name         string
	Quantity     int
	CheckInDate  *time.Time
	CheckOutDate *time.Time
	Nights       *int
	DisplayPrice decimal.Decimal
}

// Summary is the order summary shown before payment.
type Summary struct {
	Lines    []SummaryLine
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Billing  pkgcheckout.BillingDetails
}

// Summarize prices the cart. The subtotal is the quantity based cart total and
// tax is charged on it at taxRate.
func Summarize(lines []cart.Line, taxRate decimal.Decimal) Summary {
	summary := Summary{
		Lines:    make([]SummaryLine, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	for _, line := range lines {
		summary.Lines = append(summary.Lines, SummaryLine{
			RoomID:       line.ID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			CheckInDate:  line.CheckInDate,
			CheckOutDate: line.CheckOutDate,
			Nights:       line.NightsOrComputed(),
			DisplayPrice: line.LineTotal(),
		})
		summary.Subtotal = summary.Subtotal.Add(line.QuantityTotal())
	}
	summary.Tax = summary.Subtotal.Mul(taxRate).Round(2)
	summary.Total = summary.Subtotal.Add(summary.Tax)
	return summary
}

// PrefillBilling seeds an empty billing form from the signed-in identity.
func PrefillBilling(identity Identity) pkgcheckout.BillingDetails {
	return pkgcheckout.BillingDetails{Email: strings.TrimSpace(identity.Email)}
}
