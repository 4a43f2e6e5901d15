package parser

import (
	"Fideliza-Backend/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReceiptText = `Posto Sao Jorge Ltda
CNPJ 12.345.678/0001-99
Rua das Flores 123
NFC-e No: 123456
Cliente: Maria da Silva
Tel: (11) 98765-4321
Email: maria@example.com
17/09/2025 - 11:08 PM
Gasolina Comum 20 litros
TOTAL R$ 240,00
Pagamento: PIX
Cashback: R$ 2,40`

func newTestParser() ParserService {
	now := func() time.Time { return time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC) }
	return NewParserServiceAt(DefaultConfig(), DefaultRules(), now)
}

func TestParse_FullReceipt(t *testing.T) {
	fields := newTestParser().Parse(fullReceiptText)

	assert.Equal(t, "123456", fields.InvoiceNumber)
	assert.Equal(t, "Posto Sao Jorge Ltda", fields.StoreName)
	assert.InDelta(t, 240.0, fields.Amount, 1e-9)
	assert.Equal(t, "BRL", fields.Currency)
	assert.Equal(t, "Maria da Silva", fields.CustomerName)
	assert.Equal(t, "11987654321", fields.PhoneNumber)
	assert.Equal(t, "maria@example.com", fields.Email)
	assert.Equal(t, domain.PaymentPix, fields.PaymentMethod)
	assert.InDelta(t, 20.0, fields.Liters, 1e-9)
	assert.InDelta(t, 2.40, fields.CashbackAmount, 1e-9)
	assert.InDelta(t, 1.0, fields.Confidence, 1e-9)
}

func TestParse_AmountCommaDecimalRoundTrip(t *testing.T) {
	fields := newTestParser().Parse("TOTAL R$ 1.234,56")
	assert.InDelta(t, 1234.56, fields.Amount, 1e-9)
	assert.Equal(t, "BRL", fields.Currency)
}

func TestNormalizeDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"234,56", 234.56, true},
		{"240.00", 240.0, true},
		{"1.234.567,89", 1234567.89, true},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := normalizeDecimal(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}

func TestParse_DateTimeTwelveHour(t *testing.T) {
	fields := newTestParser().Parse("Data: 17/09/2025 - 11:08 PM")

	assert.Equal(t, 2025, fields.Date.Year())
	assert.Equal(t, time.September, fields.Date.Month())
	assert.Equal(t, 17, fields.Date.Day())
	assert.Equal(t, 23, fields.Date.Hour())
	assert.Equal(t, 8, fields.Date.Minute())
}

func TestParse_AmbiguousDatePicksClosestToNow(t *testing.T) {
	// Both tokens <= 12; with "now" pinned at 2025-09-20, the day-first
	// reading (Sep 5) is closer than the month-first one (May 9).
	fields := newTestParser().Parse("05/09/2025")
	assert.Equal(t, time.September, fields.Date.Month())
	assert.Equal(t, 5, fields.Date.Day())
}

func TestParse_ConfidenceFloorWithNothingValid(t *testing.T) {
	fields := newTestParser().Parse("")
	assert.InDelta(t, 0.1, fields.Confidence, 1e-9)
	assert.Equal(t, "Not Found", fields.InvoiceNumber)
	assert.Equal(t, "Not Found", fields.StoreName)
	assert.Equal(t, domain.PaymentUnknown, fields.PaymentMethod)
}

func TestInvoiceNumberValidator(t *testing.T) {
	assert.False(t, validInvoiceNumber("0000"))
	assert.False(t, validInvoiceNumber("2024"))
	assert.False(t, validInvoiceNumber("12"))
	assert.True(t, validInvoiceNumber("123456"))
	assert.True(t, validInvoiceNumber("AB-123"))
}

func TestParse_StoreNameSkipsBoilerplate(t *testing.T) {
	text := `CUPOM FISCAL
CNPJ 12.345.678/0001-99
Rua das Laranjeiras 45
12345
Auto Posto Central
TOTAL R$ 50,00`

	fields := newTestParser().Parse(text)
	assert.Equal(t, "Auto Posto Central", fields.StoreName)
}

func TestParse_CustomerNameRejectsNumericCapture(t *testing.T) {
	fields := newTestParser().Parse("Cliente: 123,45")
	assert.Equal(t, "Not Found", fields.CustomerName)
}

func TestClassifyPayment(t *testing.T) {
	p := newTestParser()
	cases := map[string]string{
		"Pago via PIX":            domain.PaymentPix,
		"Cartao de Credito VISA":  domain.PaymentCard,
		"Pagamento em dinheiro":   domain.PaymentCash,
		"Boleto bancario":         domain.PaymentBoleto,
		"Transferencia TED":       domain.PaymentBankTransfer,
		"sem forma de pagamento":  domain.PaymentUnknown,
	}
	for text, want := range cases {
		fields := p.Parse(text)
		assert.Equal(t, want, fields.PaymentMethod, "text %q", text)
	}
}

func TestCheckPlausibility(t *testing.T) {
	p := newTestParser()

	t.Run("fails with fewer than two signals", func(t *testing.T) {
		fields := p.Parse("completely unrelated text with no receipt data at all")
		err := p.CheckPlausibility(fields, "raw")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var vErr *domain.ReceiptValidationError
		require.True(t, errors.As(err, &vErr))
		assert.NotEmpty(t, vErr.Warnings)
		assert.Equal(t, "raw", vErr.RawText)
	})

	t.Run("passes with amount and currency", func(t *testing.T) {
		fields := p.Parse(fullReceiptText)
		assert.NoError(t, p.CheckPlausibility(fields, fullReceiptText))
	})
}
