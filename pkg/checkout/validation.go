package checkout

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
)

const (
	MessageEmptyCart   = "Your cart is empty"
	MessageMissingInfo = "Please fill in all required fields"
	NoticeEmptyCart    = "Empty Cart"
	NoticeMissingInfo  = "Missing Information"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PaymentCard is the card captured on the checkout form.
type PaymentCard struct {
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required,credit_card"`
	Expiry string `json:"expiry" validate:"required"`
	CVC    string `json:"cvc" validate:"required,numeric,min=3,max=4"`
}

// BillingDetails is collected at checkout. Only name and email gate submission.
type BillingDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Valid reports whether the card passes number, CVC and expiry checks at now.
func (c PaymentCard) Valid(now time.Time) bool {
	card := PaymentCard{
		Name:   strings.TrimSpace(c.Name),
		Number: strings.ReplaceAll(strings.TrimSpace(c.Number), " ", ""),
		Expiry: strings.TrimSpace(c.Expiry),
		CVC:    strings.TrimSpace(c.CVC),
	}
	if err := validate.Struct(card); err != nil {
		return false
	}
	return !expired(card.Expiry, now)
}

// Complete reports whether the billing name and email are present.
func (b BillingDetails) Complete() bool {
	return strings.TrimSpace(b.Name) != "" && strings.TrimSpace(b.Email) != ""
}

// ValidateSubmission gates a checkout attempt. Empty carts are reported before
// missing payment or billing information.
func ValidateSubmission(lineCount int, card PaymentCard, billing BillingDetails, now time.Time) error {
	if lineCount == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, MessageEmptyCart).WithNotice(NoticeEmptyCart)
	}

	missing := []string{}
	if !card.Valid(now) {
		missing = append(missing, "payment")
	}
	if strings.TrimSpace(billing.Name) == "" {
		missing = append(missing, "billing.name")
	}
	if strings.TrimSpace(billing.Email) == "" {
		missing = append(missing, "billing.email")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, MessageMissingInfo).
			WithNotice(NoticeMissingInfo).
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

// expired treats a card as valid through the last day of its MM/YY month.
func expired(expiry string, now time.Time) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return true
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return true
	}
	yearPart := strings.TrimSpace(parts[1])
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return true
	}
	switch len(yearPart) {
	case 2:
		year += 2000
	case 4:
	default:
		return true
	}
	firstOfNextMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(firstOfNextMonth)
}
