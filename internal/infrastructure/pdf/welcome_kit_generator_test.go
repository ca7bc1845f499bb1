package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":       "0",
		"999":     "999",
		"25000":   "25.000",
		"1000000": "1.000.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(in), in)
	}
	assert.Equal(t, "-$1.500", money(decimal.NewFromInt(-1500)))
}

func TestGenerateWelcomeKit_DevuelvePDF(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	data := ports.WelcomeKitData{
		Policy: &entity.Policy{
			Number: "POL-20260301-ABC234", Premium: decimal.NewFromInt(850000),
			StartDate: start, EndDate: start.AddDate(1, 0, 0),
		},
		Client:   &entity.Client{Name: "Ana Gómez", Document: "1020304050"},
		Product:  &entity.Product{Name: "Vida Plus", Insurer: "Aseguradora Andina", Coverages: []string{"Muerte", "Invalidez"}},
		Seller:   &entity.User{Name: "Carlos Ruiz", Email: "carlos@example.com"},
		IssuedAt: start,
	}

	out, err := NewWelcomeKitGenerator("https://seguros.example.com/verificar").GenerateWelcomeKit(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateWelcomeKit_DatosIncompletos(t *testing.T) {
	_, err := NewWelcomeKitGenerator("").GenerateWelcomeKit(context.Background(), ports.WelcomeKitData{})
	assert.Error(t, err)
}
