package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"rampgw/internal/platform/metrics"
)

// SchemaError signals an upstream response whose required identifiers are
// missing: the payload cannot produce a usable catalog. It is logged loudly
// because it means the upstream contract changed underneath us.
type SchemaError struct {
	Shape  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("upstream schema mismatch in %s payload: %s", e.Shape, e.Reason)
}

// IsSchemaError reports whether err is a schema mismatch.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ConfigPayload is the upstream config endpoint wire shape: supported
// countries, their payment rails, and US subdivisions.
type ConfigPayload struct {
	Countries []struct {
		ID             string `json:"id"`
		Subdivisions   []string `json:"subdivisions"`
		PaymentMethods []struct {
			ID string `json:"id"`
		} `json:"payment_methods"`
	} `json:"countries"`
}

// OptionsPayload is the upstream options endpoint wire shape. Buy and sell
// responses carry the same structures under different keys; exactly one pair
// is populated per response.
type OptionsPayload struct {
	SellCurrencies     []wireAsset `json:"sell_currencies"`
	PurchaseCurrencies []wireAsset `json:"purchase_currencies"`

	CashOutCurrencies []wireFiat `json:"cash_out_currencies"`
	PaymentCurrencies []wireFiat `json:"payment_currencies"`
}

type wireAsset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Networks []struct {
		Name            string `json:"name"`
		DisplayName     string `json:"display_name"`
		ChainID         string `json:"chain_id"`
		ContractAddress string `json:"contract_address"`
	} `json:"networks"`
}

type wireFiat struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Limits []struct {
		ID  string `json:"id"`
		Min string `json:"min"`
		Max string `json:"max"`
	} `json:"limits"`
}

// Normalizer maps upstream payloads into the internal model. Mapping is
// total: every internal field is populated or explicitly optional, and a
// record is only dropped when its required identifier is absent.
type Normalizer struct {
	names   *DisplayNames
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewNormalizer builds a Normalizer. names must not be nil.
func NewNormalizer(names *DisplayNames, logger *slog.Logger, m *metrics.Metrics) *Normalizer {
	return &Normalizer{names: names, logger: logger, metrics: m}
}

// Config maps a config payload into a catalog of countries.
func (n *Normalizer) Config(payload *ConfigPayload) (*Catalog, error) {
	if len(payload.Countries) == 0 {
		return nil, &SchemaError{Shape: "config", Reason: "no countries in payload"}
	}

	cat := &Catalog{}
	seen := map[string]bool{}
	for _, wire := range payload.Countries {
		if wire.ID == "" {
			n.skip("config", "country missing id")
			continue
		}
		if seen[wire.ID] {
			continue
		}
		seen[wire.ID] = true

		country := Country{
			Code:         wire.ID,
			Name:         n.names.CountryName(wire.ID),
			Subdivisions: wire.Subdivisions,
		}
		for _, pm := range wire.PaymentMethods {
			if pm.ID == "" {
				n.skip("config", "payment method missing id")
				continue
			}
			country.PaymentMethods = append(country.PaymentMethods, pm.ID)
		}
		cat.Countries = append(cat.Countries, country)
	}

	if len(cat.Countries) == 0 {
		return nil, &SchemaError{Shape: "config", Reason: "every country record was unusable"}
	}
	return cat, nil
}

// Options maps an options payload into a catalog of assets, fiat currencies,
// and payment methods, selecting the wire keys for the given direction.
func (n *Normalizer) Options(direction Direction, payload *OptionsPayload) (*Catalog, error) {
	assets := payload.SellCurrencies
	fiats := payload.CashOutCurrencies
	if direction == Buy {
		assets = payload.PurchaseCurrencies
		fiats = payload.PaymentCurrencies
	}

	if len(assets) == 0 {
		return nil, &SchemaError{Shape: "options", Reason: fmt.Sprintf("no %s currencies in payload", direction)}
	}

	cat := &Catalog{}

	seenAssets := map[string]bool{}
	for _, wire := range assets {
		// The asset symbol is the internal code; an asset without one
		// is unusable.
		if wire.Symbol == "" {
			n.skip("options", "asset missing symbol")
			continue
		}
		if seenAssets[wire.Symbol] {
			continue
		}
		seenAssets[wire.Symbol] = true

		asset := Asset{Code: wire.Symbol, Name: wire.Name}
		if asset.Name == "" {
			asset.Name = wire.Symbol
		}
		seenNets := map[string]bool{}
		for _, net := range wire.Networks {
			if net.Name == "" || seenNets[net.Name] {
				continue
			}
			seenNets[net.Name] = true
			name := net.DisplayName
			if name == "" {
				name = net.Name
			}
			asset.Networks = append(asset.Networks, Network{ID: net.Name, Name: name})
		}
		cat.Assets = append(cat.Assets, asset)
	}

	if len(cat.Assets) == 0 {
		return nil, &SchemaError{Shape: "options", Reason: "every asset record was unusable"}
	}

	// Fiat limits arrive as one row per payment method, scoped to exactly
	// that currency. Re-key them so a payment method exposes its limits
	// indexed by currency code once aggregated across currencies.
	methods := map[string]*PaymentMethod{}
	var methodOrder []string
	seenFiat := map[string]bool{}
	for _, wire := range fiats {
		if wire.ID == "" {
			n.skip("options", "fiat currency missing id")
			continue
		}
		if seenFiat[wire.ID] {
			continue
		}
		seenFiat[wire.ID] = true

		fiat := FiatCurrency{Code: wire.ID, Name: wire.Name}
		if fiat.Name == "" {
			fiat.Name = wire.ID
		}
		for _, row := range wire.Limits {
			if row.ID == "" {
				n.skip("options", "limit row missing payment method id")
				continue
			}
			fiat.PaymentMethods = append(fiat.PaymentMethods, row.ID)

			method, ok := methods[row.ID]
			if !ok {
				method = &PaymentMethod{
					ID:     row.ID,
					Name:   n.names.PaymentMethodName(row.ID),
					Limits: map[string]Limit{},
				}
				methods[row.ID] = method
				methodOrder = append(methodOrder, row.ID)
			}
			method.Limits[wire.ID] = Limit{Min: row.Min, Max: row.Max}
		}
		cat.FiatCurrencies = append(cat.FiatCurrencies, fiat)
	}

	for _, id := range methodOrder {
		cat.PaymentMethods = append(cat.PaymentMethods, *methods[id])
	}
	return cat, nil
}

func (n *Normalizer) skip(shape, reason string) {
	n.logger.Error("skipping upstream record", "shape", shape, "reason", reason)
	if n.metrics != nil {
		n.metrics.SchemaSkippedRecords.WithLabelValues(shape).Inc()
	}
}
