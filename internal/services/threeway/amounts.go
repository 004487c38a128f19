package threeway

import (
	"encoding/json"
	"strings"

	"invoice-matching-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ResolveAmount resolves a delivery note amount through a fixed chain:
// the explicit column, then the extraction payload's "amount",
// "total_amount", and nested "extracted.amount" fields. Returns nil when no
// usable amount exists.
func ResolveAmount(dn *models.DeliveryNote) *decimal.Decimal {
	if dn.Amount != nil {
		return dn.Amount
	}
	if len(dn.ExtractedData) == 0 {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(dn.ExtractedData, &payload); err != nil {
		return nil
	}

	for _, key := range []string{"amount", "total_amount"} {
		if d := toDecimal(payload[key]); d != nil {
			return d
		}
	}
	if nested, ok := payload["extracted"].(map[string]interface{}); ok {
		if d := toDecimal(nested["amount"]); d != nil {
			return d
		}
	}
	return nil
}

func toDecimal(v interface{}) *decimal.Decimal {
	switch val := v.(type) {
	case float64:
		d := decimal.NewFromFloat(val)
		return &d
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return &d
		}
	}
	return nil
}
