package threeway

import (
	"testing"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAmount(t *testing.T) {
	t.Run("explicit column wins over extracted data", func(t *testing.T) {
		dn := &models.DeliveryNote{
			Amount:        dptr("100.00"),
			ExtractedData: []byte(`{"amount": 999.99}`),
		}
		got := ResolveAmount(dn)
		require.NotNil(t, got)
		assert.True(t, got.Equal(d("100.00")))
	})

	t.Run("amount key from extracted data", func(t *testing.T) {
		dn := &models.DeliveryNote{ExtractedData: []byte(`{"amount": 42.50}`)}
		got := ResolveAmount(dn)
		require.NotNil(t, got)
		assert.True(t, got.Equal(d("42.5")))
	})

	t.Run("total_amount as string", func(t *testing.T) {
		dn := &models.DeliveryNote{ExtractedData: []byte(`{"total_amount": " 1234.56 "}`)}
		got := ResolveAmount(dn)
		require.NotNil(t, got)
		assert.True(t, got.Equal(d("1234.56")))
	})

	t.Run("nested extracted.amount", func(t *testing.T) {
		dn := &models.DeliveryNote{ExtractedData: []byte(`{"extracted": {"amount": "77.00"}}`)}
		got := ResolveAmount(dn)
		require.NotNil(t, got)
		assert.True(t, got.Equal(d("77.00")))
	})

	t.Run("amount key takes precedence over total_amount", func(t *testing.T) {
		dn := &models.DeliveryNote{ExtractedData: []byte(`{"amount": "10.00", "total_amount": "20.00"}`)}
		got := ResolveAmount(dn)
		require.NotNil(t, got)
		assert.True(t, got.Equal(d("10.00")))
	})

	t.Run("nil when nothing usable", func(t *testing.T) {
		assert.Nil(t, ResolveAmount(&models.DeliveryNote{}))
		assert.Nil(t, ResolveAmount(&models.DeliveryNote{ExtractedData: []byte(`not json`)}))
		assert.Nil(t, ResolveAmount(&models.DeliveryNote{ExtractedData: []byte(`{"amount": "n/a"}`)}))
		assert.Nil(t, ResolveAmount(&models.DeliveryNote{ExtractedData: []byte(`{"items": [1, 2]}`)}))
	})
}

func TestDeriveMatchStatus(t *testing.T) {
	cases := []struct {
		name string
		po   bool
		dn   bool
		want string
	}{
		{"both links", true, true, models.MatchStatusFullMatched},
		{"po only", true, false, models.MatchStatusPOMatched},
		{"dn only", false, true, models.MatchStatusDNMatched},
		{"no links", false, false, models.MatchStatusUnmatched},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := models.Invoice{}
			if tc.po {
				id := uuid.New()
				inv.PurchaseOrderID = &id
			}
			if tc.dn {
				id := uuid.New()
				inv.DeliveryNoteID = &id
			}
			assert.Equal(t, tc.want, inv.DeriveMatchStatus())
		})
	}
}
