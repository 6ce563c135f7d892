package catalog

// Static fallback datasets, served only when a lookup has never succeeded and
// the upstream is unavailable. Deliberately conservative: a short, known-good
// catalog the checkout flow can always render.

// FallbackConfig returns the hard-coded country catalog.
func FallbackConfig() *Catalog {
	return &Catalog{
		Countries: []Country{
			{
				Code:           "US",
				Name:           "United States",
				PaymentMethods: []string{"ACH_BANK_ACCOUNT", "PAYPAL"},
				Subdivisions:   USSubdivisions,
			},
			{
				Code:           "GB",
				Name:           "United Kingdom",
				PaymentMethods: []string{"SEPA_BANK_ACCOUNT", "PAYPAL"},
			},
			{
				Code:           "DE",
				Name:           "Germany",
				PaymentMethods: []string{"SEPA_BANK_ACCOUNT"},
			},
		},
	}
}

// FallbackOptions returns the hard-coded asset/currency catalog for a
// direction. Both directions currently share one dataset.
func FallbackOptions(direction Direction) *Catalog {
	return &Catalog{
		Assets: []Asset{
			{
				Code: "USDC",
				Name: "USD Coin",
				Networks: []Network{
					{ID: "base", Name: "Base"},
					{ID: "ethereum", Name: "Ethereum"},
					{ID: "polygon", Name: "Polygon"},
				},
			},
			{
				Code: "ETH",
				Name: "Ethereum",
				Networks: []Network{
					{ID: "base", Name: "Base"},
					{ID: "ethereum", Name: "Ethereum"},
				},
			},
			{
				Code: "BTC",
				Name: "Bitcoin",
				Networks: []Network{
					{ID: "bitcoin", Name: "Bitcoin"},
				},
			},
		},
		FiatCurrencies: []FiatCurrency{
			{Code: "USD", Name: "US Dollar", PaymentMethods: []string{"ACH_BANK_ACCOUNT", "PAYPAL"}},
			{Code: "EUR", Name: "Euro", PaymentMethods: []string{"SEPA_BANK_ACCOUNT"}},
			{Code: "GBP", Name: "British Pound", PaymentMethods: []string{"SEPA_BANK_ACCOUNT", "PAYPAL"}},
		},
		PaymentMethods: []PaymentMethod{
			{
				ID:   "ACH_BANK_ACCOUNT",
				Name: "Bank Transfer (ACH)",
				Limits: map[string]Limit{
					"USD": {Min: "10", Max: "25000"},
				},
			},
			{
				ID:   "SEPA_BANK_ACCOUNT",
				Name: "Bank Transfer (SEPA)",
				Limits: map[string]Limit{
					"EUR": {Min: "10", Max: "25000"},
					"GBP": {Min: "10", Max: "25000"},
				},
			},
			{
				ID:   "PAYPAL",
				Name: "PayPal",
				Limits: map[string]Limit{
					"USD": {Min: "10", Max: "5000"},
					"GBP": {Min: "10", Max: "5000"},
				},
			},
		},
	}
}
