// Package selection keeps the user's cross-field choices consistent. The
// repair function is the only code allowed to change more than one field at a
// time; every external field change funnels through it before anything is
// rendered or submitted.
package selection

// Field names the selection field a change targets.
type Field string

const (
	FieldCountry       Field = "country"
	FieldSubdivision   Field = "subdivision"
	FieldAsset         Field = "asset"
	FieldNetwork       Field = "network"
	FieldFiatCurrency  Field = "fiat_currency"
	FieldPaymentMethod Field = "payment_method"
)

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	switch f {
	case FieldCountry, FieldSubdivision, FieldAsset, FieldNetwork, FieldFiatCurrency, FieldPaymentMethod:
		return true
	}
	return false
}

// State is the user's current selection. It has no hidden modes: one record,
// six interdependent fields.
type State struct {
	Country       string `json:"country"`
	Subdivision   string `json:"subdivision,omitempty"`
	Asset         string `json:"asset"`
	Network       string `json:"network"`
	FiatCurrency  string `json:"fiat_currency"`
	PaymentMethod string `json:"payment_method"`
}
