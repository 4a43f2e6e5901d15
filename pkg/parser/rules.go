package parser

import (
	"regexp"
)

// Rule pairs a pattern with a priority position. Tables are evaluated in
// order; the first match that passes the field's validator wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// CurrencyRule groups the amount patterns tried for one currency symbol set.
type CurrencyRule struct {
	Currency string
	Patterns []*regexp.Regexp
}

// Rules holds every pattern table the parser evaluates. The default set
// targets Brazilian fuel-station receipts but the whole table is injectable.
type Rules struct {
	InvoiceNumber   []Rule
	Currency        []CurrencyRule
	FallbackAmount  []Rule
	Date            []Rule
	StoreLabel      []Rule
	CustomerName    []Rule
	Phone           []Rule
	Email           []Rule
	Liters          []Rule
	Cashback        []Rule
	PaymentKeywords map[string][]string
	SkipLines       []*regexp.Regexp
}

func DefaultRules() Rules {
	return Rules{
		InvoiceNumber: []Rule{
			{Name: "nfce", Pattern: regexp.MustCompile(`(?i)NFC-?e\s*(?:n[ºo°.]?\s*)?[:#]?\s*(\d{3,})`)},
			{Name: "nota-fiscal", Pattern: regexp.MustCompile(`(?i)nota\s+fiscal\s*(?:n[ºo°.]?\s*)?[:#]?\s*(\d{3,})`)},
			{Name: "cupom", Pattern: regexp.MustCompile(`(?i)cupom\s*(?:fiscal)?\s*(?:n[ºo°.]?\s*)?[:#]?\s*(\d{3,})`)},
			{Name: "coo", Pattern: regexp.MustCompile(`(?i)\bCOO\s*[:#]?\s*(\d{3,})`)},
			{Name: "invoice", Pattern: regexp.MustCompile(`(?i)invoice\s*(?:n[ºo°.]?|number|#)?\s*[:#]?\s*([A-Z0-9-]{3,})`)},
			{Name: "bare-number", Pattern: regexp.MustCompile(`\b(\d{6,})\b`)},
		},
		Currency: []CurrencyRule{
			{
				Currency: "BRL",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)(?:total|valor\s+total|valor\s+pago|total\s+a\s+pagar)\s*[:=]?\s*R\$\s*([\d.,]+)`),
					regexp.MustCompile(`R\$\s*([\d.,]+)`),
				},
			},
			{
				Currency: "USD",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)(?:total|amount\s+due)\s*[:=]?\s*(?:US)?\$\s*([\d.,]+)`),
					regexp.MustCompile(`(?:US)?\$\s*([\d.,]+)`),
				},
			},
			{
				Currency: "EUR",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)(?:total)\s*[:=]?\s*€\s*([\d.,]+)`),
					regexp.MustCompile(`€\s*([\d.,]+)`),
				},
			},
		},
		FallbackAmount: []Rule{
			{Name: "labeled-total", Pattern: regexp.MustCompile(`(?i)(?:total|valor)\s*[:=]?\s*([\d.,]+)`)},
		},
		Date: []Rule{
			{Name: "date-time", Pattern: regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\s*[-,]?\s*(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])?`)},
			{Name: "date-only", Pattern: regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})`)},
		},
		StoreLabel: []Rule{
			{Name: "razao-social", Pattern: regexp.MustCompile(`(?i)raz[aã]o\s+social\s*[:]\s*(.+)`)},
			{Name: "loja", Pattern: regexp.MustCompile(`(?i)\bloja\s*[:]\s*(.+)`)},
			{Name: "store", Pattern: regexp.MustCompile(`(?i)\bstore\s*[:]\s*(.+)`)},
		},
		CustomerName: []Rule{
			{Name: "cliente", Pattern: regexp.MustCompile(`(?i)(?:cliente|consumidor|customer|nome)\s*[:]\s*([^\n]+?)(?:\s+(?:CPF|CNPJ|Endere[çc]o|Tel|Fone|Email|E-mail|Data|Total)\b.*)?$`)},
		},
		Phone: []Rule{
			{Name: "labeled", Pattern: regexp.MustCompile(`(?i)(?:tel|fone|telefone|phone|celular)\s*[.:]?\s*([\d()+\-. ]{7,20})`)},
			{Name: "bare", Pattern: regexp.MustCompile(`\(?\d{2,3}\)?\s?\d{4,5}[-. ]?\d{4}`)},
		},
		Email: []Rule{
			{Name: "labeled", Pattern: regexp.MustCompile(`(?i)(?:email|e-mail)\s*[:]\s*([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)},
			{Name: "bare", Pattern: regexp.MustCompile(`([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)},
		},
		Liters: []Rule{
			{Name: "labeled", Pattern: regexp.MustCompile(`(?i)([\d.,]+)\s*(?:litros?|liters?|lts?\b|\bl\b)`)},
			{Name: "qty", Pattern: regexp.MustCompile(`(?i)(?:qtde?|quant\.?|volume)\s*[:]?\s*([\d.,]+)`)},
		},
		Cashback: []Rule{
			{Name: "labeled", Pattern: regexp.MustCompile(`(?i)cashback\s*[:]?\s*(?:R\$|US\$|\$|€)?\s*(\d+[.,]\d{1,2})`)},
		},
		PaymentKeywords: map[string][]string{
			"card":          {"cartao", "cartão", "credito", "crédito", "debito", "débito", "card", "visa", "mastercard", "elo"},
			"cash":          {"dinheiro", "cash", "especie", "espécie"},
			"pix":           {"pix"},
			"boleto":        {"boleto"},
			"bank_transfer": {"transferencia", "transferência", "ted", "doc", "transfer"},
		},
		SkipLines: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(?:CNPJ|CPF|IE|IM)\b`),
			regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`), // CNPJ anywhere in line
			regexp.MustCompile(`(?i)^\s*(?:rua|av\.?|avenida|rod\.?|rodovia|estrada|alameda|travessa|street|avenue)\b`),
			regexp.MustCompile(`(?i)\bCEP\b`),
			regexp.MustCompile(`^\s*[\d\s.,/-]+\s*$`), // lines that are only numbers
			regexp.MustCompile(`(?i)^\s*(?:cupom\s+fiscal|nota\s+fiscal|danfe|nfc-?e|sat\b|extrato|recibo|receipt|tax\s+invoice|documento\s+auxiliar).*$`),
		},
	}
}
