package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// DisplayNames enriches upstream identifiers with human-readable names.
// Unknown identifiers pass through with the raw code as the display name;
// a missing name is never a reason to drop data.
type DisplayNames struct {
	Countries      map[string]string `json:"countries"`
	PaymentMethods map[string]string `json:"payment_methods"`
}

// DefaultDisplayNames covers the catalog as shipped; the table is extendable
// from a JSON file so upstream catalog growth needs no code change.
func DefaultDisplayNames() *DisplayNames {
	return &DisplayNames{
		Countries: map[string]string{
			"US": "United States",
			"GB": "United Kingdom",
			"DE": "Germany",
			"FR": "France",
			"ES": "Spain",
			"IT": "Italy",
			"NL": "Netherlands",
			"CA": "Canada",
			"AU": "Australia",
			"BR": "Brazil",
			"MX": "Mexico",
			"JP": "Japan",
			"SG": "Singapore",
		},
		PaymentMethods: map[string]string{
			"ACH_BANK_ACCOUNT":  "Bank Transfer (ACH)",
			"SEPA_BANK_ACCOUNT": "Bank Transfer (SEPA)",
			"CARD":              "Debit Card",
			"FIAT_WALLET":       "Fiat Wallet",
			"PAYPAL":            "PayPal",
			"RTP":               "Real-Time Payments",
			"APPLE_PAY":         "Apple Pay",
		},
	}
}

// LoadDisplayNames returns the defaults merged with overrides from path, if
// any. Overrides win; entries absent from the file keep their defaults.
func LoadDisplayNames(path string) (*DisplayNames, error) {
	names := DefaultDisplayNames()
	if path == "" {
		return names, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read display names: %w", err)
	}
	var overrides DisplayNames
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse display names: %w", err)
	}
	for code, name := range overrides.Countries {
		names.Countries[code] = name
	}
	for id, name := range overrides.PaymentMethods {
		names.PaymentMethods[id] = name
	}
	return names, nil
}

// CountryName resolves a country code, falling back to the code itself.
func (d *DisplayNames) CountryName(code string) string {
	if name, ok := d.Countries[code]; ok {
		return name
	}
	return code
}

// PaymentMethodName resolves a payment method ID, falling back to the ID.
func (d *DisplayNames) PaymentMethodName(id string) string {
	if name, ok := d.PaymentMethods[id]; ok {
		return name
	}
	return id
}
