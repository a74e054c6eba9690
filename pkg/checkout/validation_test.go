package checkout

import (
	"testing"
	"time"

	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
)

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func validCard() PaymentCard {
	return PaymentCard{Name: "Jane Doe", Number: "4242 4242 4242 4242", Expiry: "12/28", CVC: "123"}
}

func TestPaymentCardValid(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*PaymentCard)
		want  bool
	}{
		{name: "valid", tweak: func(*PaymentCard) {}, want: true},
		{name: "four digit cvc", tweak: func(c *PaymentCard) { c.CVC = "1234" }, want: true},
		{name: "four digit year", tweak: func(c *PaymentCard) { c.Expiry = "01/2027" }, want: true},
		{name: "expires this month", tweak: func(c *PaymentCard) { c.Expiry = "10/26" }, want: true},
		{name: "expired last month", tweak: func(c *PaymentCard) { c.Expiry = "09/26" }, want: false},
		{name: "bad luhn", tweak: func(c *PaymentCard) { c.Number = "4242424242424241" }, want: false},
		{name: "short cvc", tweak: func(c *PaymentCard) { c.CVC = "12" }, want: false},
		{name: "alpha cvc", tweak: func(c *PaymentCard) { c.CVC = "abc" }, want: false},
		{name: "missing name", tweak: func(c *PaymentCard) { c.Name = " " }, want: false},
		{name: "bad month", tweak: func(c *PaymentCard) { c.Expiry = "13/28" }, want: false},
		{name: "no separator", tweak: func(c *PaymentCard) { c.Expiry = "1228" }, want: false},
	}
	for _, tc := range cases {
		card := validCard()
		tc.tweak(&card)
		if got := card.Valid(testNow); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestBillingComplete(t *testing.T) {
	if !(BillingDetails{Name: "Jane", Email: "jane@x.com"}).Complete() {
		t.Fatal("expected name and email to be enough")
	}
	if (BillingDetails{Name: "Jane", Email: "  "}).Complete() {
		t.Fatal("expected blank email to be incomplete")
	}
}

func TestValidateSubmissionEmptyCartWins(t *testing.T) {
	err := ValidateSubmission(0, PaymentCard{}, BillingDetails{}, testNow)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != MessageEmptyCart {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if typed.Notice() != NoticeEmptyCart {
		t.Fatalf("unexpected notice: %q", typed.Notice())
	}
}

func TestValidateSubmissionMissingInformation(t *testing.T) {
	err := ValidateSubmission(1, validCard(), BillingDetails{Name: "Jane"}, testNow)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != MessageMissingInfo {
		t.Fatalf("expected missing info error, got %v", err)
	}
	if typed.Notice() != NoticeMissingInfo {
		t.Fatalf("unexpected notice: %q", typed.Notice())
	}
	details := typed.Details().(map[string]any)
	fields := details["fields"].([]string)
	if len(fields) != 1 || fields[0] != "billing.email" {
		t.Fatalf("unexpected fields: %v", fields)
	}

	if err := ValidateSubmission(1, PaymentCard{}, BillingDetails{Name: "Jane", Email: "j@x.com"}, testNow); err == nil {
		t.Fatal("expected invalid card to be rejected")
	}
}

func TestValidateSubmissionPasses(t *testing.T) {
	if err := ValidateSubmission(2, validCard(), BillingDetails{Name: "Jane", Email: "jane@x.com"}, testNow); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
