package enums

// CheckoutState is the per-attempt checkout state machine position.
type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "idle"
	CheckoutStateValidating CheckoutState = "validating"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStateConfirmed  CheckoutState = "confirmed"
	CheckoutStateFailed     CheckoutState = "failed"
)

func (s CheckoutState) String() string {
	return string(s)
}
