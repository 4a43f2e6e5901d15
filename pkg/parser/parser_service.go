package parser

import (
	"Fideliza-Backend/domain"
	"regexp"
	"strings"
	"time"
)

// Config is the explicit, immutable configuration injected into the parser.
type Config struct {
	DefaultText       string
	MaxAmount         float64
	FallbackMaxAmount float64
	ConfidenceFloor   float64
	GateMinConfidence float64
	GateMinSignals    int
}

func DefaultConfig() Config {
	return Config{
		DefaultText:       "Not Found",
		MaxAmount:         10_000_000,
		FallbackMaxAmount: 100_000,
		ConfidenceFloor:   0.1,
		GateMinConfidence: 0.2,
		GateMinSignals:    2,
	}
}

type (
	ParserService interface {
		Parse(rawText string) domain.ParsedReceiptFields
		CheckPlausibility(fields domain.ParsedReceiptFields, rawText string) error
	}

	parserService struct {
		config Config
		rules  Rules
		now    func() time.Time
	}
)

func NewParserService(config Config, rules Rules) ParserService {
	return &parserService{
		config: config,
		rules:  rules,
		now:    time.Now,
	}
}

// NewParserServiceAt pins the clock used for ambiguous-date resolution.
func NewParserServiceAt(config Config, rules Rules, now func() time.Time) ParserService {
	return &parserService{
		config: config,
		rules:  rules,
		now:    now,
	}
}

func (s *parserService) Parse(rawText string) domain.ParsedReceiptFields {
	fields := domain.ParsedReceiptFields{
		InvoiceNumber: s.config.DefaultText,
		StoreName:     s.config.DefaultText,
		CustomerName:  s.config.DefaultText,
		PaymentMethod: domain.PaymentUnknown,
	}

	checked, passed := 0, 0
	check := func(ok bool) {
		checked++
		if ok {
			passed++
		}
	}

	if invoice, ok := s.extractInvoiceNumber(rawText); ok {
		fields.InvoiceNumber = invoice
	}
	check(fields.InvoiceNumber != s.config.DefaultText)

	if store, ok := s.extractStoreName(rawText); ok {
		fields.StoreName = store
	}
	check(fields.StoreName != s.config.DefaultText)

	fields.Amount, fields.Currency = s.extractAmount(rawText)
	check(fields.Amount > 0)
	check(fields.Currency != "")

	if date, ok := s.extractDate(rawText, s.now()); ok {
		fields.Date = date
	}
	check(!fields.Date.IsZero())

	fields.PaymentMethod = s.classifyPayment(rawText)
	check(fields.PaymentMethod != domain.PaymentUnknown)

	if name, ok := s.extractCustomerName(rawText); ok {
		fields.CustomerName = name
	}
	check(fields.CustomerName != s.config.DefaultText)

	if phone, ok := s.extractPhone(rawText); ok {
		fields.PhoneNumber = phone
	}
	check(fields.PhoneNumber != "")

	if email, ok := s.extractEmail(rawText); ok {
		fields.Email = email
	}
	check(fields.Email != "")

	if liters, ok := s.extractDecimalRule(s.rules.Liters, rawText); ok {
		fields.Liters = liters
	}
	check(fields.Liters > 0)

	if cashback, ok := s.extractDecimalRule(s.rules.Cashback, rawText); ok {
		fields.CashbackAmount = cashback
	}
	check(fields.CashbackAmount > 0)

	fields.Confidence = s.aggregateConfidence(passed, checked)
	return fields
}

func (s *parserService) aggregateConfidence(passed, checked int) float64 {
	if checked == 0 {
		return s.config.ConfidenceFloor
	}
	confidence := float64(passed) / float64(checked)
	if confidence < s.config.ConfidenceFloor {
		return s.config.ConfidenceFloor
	}
	return confidence
}

// CheckPlausibility is the "is this a receipt at all" gate. It never panics
// the pipeline; a failure is a validation error carrying the raw extraction.
func (s *parserService) CheckPlausibility(fields domain.ParsedReceiptFields, rawText string) error {
	signals := 0
	var warnings []string

	if fields.Amount > 0 {
		signals++
	} else {
		warnings = append(warnings, "no positive amount could be extracted")
	}
	if fields.StoreName != s.config.DefaultText {
		signals++
	} else {
		warnings = append(warnings, "store name could not be extracted")
	}
	if fields.Confidence > s.config.GateMinConfidence {
		signals++
	} else {
		warnings = append(warnings, "aggregate extraction confidence is too low")
	}
	if fields.Currency != "" {
		signals++
	} else {
		warnings = append(warnings, "currency could not be resolved")
	}

	if signals < s.config.GateMinSignals {
		return &domain.ReceiptValidationError{Warnings: warnings, RawText: rawText}
	}
	return nil
}

func (s *parserService) extractInvoiceNumber(text string) (string, bool) {
	for _, rule := range s.rules.InvoiceNumber {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if validInvoiceNumber(match[1]) {
			return match[1], true
		}
	}
	return "", false
}

func validInvoiceNumber(candidate string) bool {
	if len(candidate) < 3 {
		return false
	}
	if strings.Trim(candidate, "0") == "" {
		return false
	}
	// Bare years read off a printed date are not invoice numbers.
	if len(candidate) == 4 && (strings.HasPrefix(candidate, "19") || strings.HasPrefix(candidate, "20")) {
		return false
	}
	return true
}

func (s *parserService) extractStoreName(text string) (string, bool) {
	// An explicit label beats positional heuristics.
	for _, rule := range s.rules.StoreLabel {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[1])
		if len(name) >= 3 {
			return name, true
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if s.isBoilerplateLine(line) {
			continue
		}
		return line, true
	}
	return "", false
}

func (s *parserService) isBoilerplateLine(line string) bool {
	for _, pattern := range s.rules.SkipLines {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

var (
	pureNumericPattern  = regexp.MustCompile(`^[\d\s.,/-]+$`)
	currencyLikePattern = regexp.MustCompile(`(?i)^(?:R\$|US\$|\$|€)?\s*[\d.,]+$`)
)

func (s *parserService) extractCustomerName(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		for _, rule := range s.rules.CustomerName {
			match := rule.Pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			name := strings.TrimSpace(match[1])
			if len(name) < 3 {
				continue
			}
			if pureNumericPattern.MatchString(name) || currencyLikePattern.MatchString(name) {
				continue
			}
			return name, true
		}
	}
	return "", false
}

var nonDigitPattern = regexp.MustCompile(`\D`)

func (s *parserService) extractPhone(text string) (string, bool) {
	for _, rule := range s.rules.Phone {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		captured := match[0]
		if len(match) > 1 && match[1] != "" {
			captured = match[1]
		}
		digits := nonDigitPattern.ReplaceAllString(captured, "")
		if len(digits) >= 7 && len(digits) <= 15 {
			return digits, true
		}
	}
	return "", false
}

func (s *parserService) extractEmail(text string) (string, bool) {
	for _, rule := range s.rules.Email {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(match[1]))
		if strings.Contains(email, "@") && strings.Contains(email[strings.Index(email, "@"):], ".") {
			return email, true
		}
	}
	return "", false
}

func (s *parserService) classifyPayment(text string) string {
	lower := strings.ToLower(text)
	// Deterministic keyword order: specific instruments before generic ones.
	for _, method := range []string{domain.PaymentPix, domain.PaymentBoleto, domain.PaymentCard, domain.PaymentBankTransfer, domain.PaymentCash} {
		for _, keyword := range s.rules.PaymentKeywords[method] {
			if strings.Contains(lower, keyword) {
				return method
			}
		}
	}
	return domain.PaymentUnknown
}

func (s *parserService) extractDecimalRule(rules []Rule, text string) (float64, bool) {
	for _, rule := range rules {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, ok := normalizeDecimal(match[1])
		if ok && value > 0 {
			return value, true
		}
	}
	return 0, false
}
