package qrdecode

import (
	"Fideliza-Backend/domain"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// aliasTable maps the many field spellings seen in embedded payloads onto
// canonical keys. Evaluated in order, first match wins.
var aliasTable = []struct {
	canonical string
	aliases   []string
}{
	{"receipt_id", []string{"receiptid", "receipt_id", "id", "invoiceid", "invoice_id", "nf", "nfce", "numero", "receipt"}},
	{"store_number", []string{"storenumber", "store_number", "store", "storeid", "store_id", "loja", "filial", "posto"}},
	{"amount", []string{"amount", "total", "valor", "vl", "value"}},
	{"date", []string{"date", "data", "dt", "datetime", "timestamp"}},
	{"verification_code", []string{"verificationcode", "verification_code", "code", "codigo", "chave", "auth", "hash"}},
	{"customer_name", []string{"customername", "customer_name", "cliente", "nome", "name", "customer"}},
	{"transaction_id", []string{"transactionid", "transaction_id", "txid", "tid", "trans", "transacao"}},
}

func normalizePayload(raw string, direct bool) domain.CodePayload {
	payload := domain.CodePayload{
		RawData: raw,
		Success: true,
	}

	if kv, ok := parseStructured(raw); ok {
		applyAliases(&payload, kv)
		if direct {
			payload.Confidence = confidenceDirectStructured
		} else {
			payload.Confidence = confidenceFallbackStructured
		}
		return payload
	}

	bucketLoose(&payload, raw)
	if direct {
		payload.Confidence = confidenceDirectLoose
	} else {
		payload.Confidence = confidenceFallbackLoose
	}
	return payload
}

// parseStructured attempts JSON, URL-query and delimited key=value forms.
func parseStructured(raw string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			kv := make(map[string]string, len(decoded))
			for k, v := range decoded {
				kv[normalizeKey(k)] = fmt.Sprintf("%v", v)
			}
			return kv, len(kv) > 0
		}
	}

	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		if values, err := url.ParseQuery(trimmed[idx+1:]); err == nil && len(values) > 1 {
			kv := make(map[string]string, len(values))
			for k, v := range values {
				if len(v) > 0 {
					kv[normalizeKey(k)] = v[0]
				}
			}
			return kv, len(kv) > 0
		}
	}

	pairs := regexp.MustCompile(`[|;&\n]+`).Split(trimmed, -1)
	kv := make(map[string]string)
	for _, pair := range pairs {
		for _, sep := range []string{"=", ":"} {
			if idx := strings.Index(pair, sep); idx > 0 {
				key := normalizeKey(pair[:idx])
				value := strings.TrimSpace(pair[idx+1:])
				if key != "" && value != "" {
					if _, exists := kv[key]; !exists {
						kv[key] = value
					}
				}
				break
			}
		}
	}
	return kv, len(kv) >= 2
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func applyAliases(payload *domain.CodePayload, kv map[string]string) {
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			value, ok := kv[alias]
			if !ok {
				continue
			}
			switch entry.canonical {
			case "receipt_id":
				payload.ReceiptID = value
			case "store_number":
				payload.StoreNumber = value
			case "amount":
				if amount, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64); err == nil {
					payload.Amount = amount
				}
			case "date":
				payload.Date = value
			case "verification_code":
				payload.VerificationCode = value
			case "customer_name":
				payload.CustomerName = value
			case "transaction_id":
				payload.TransactionID = value
			}
			break // first matching alias wins
		}
	}
}

var (
	looseDatePattern   = regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2}`)
	looseAmountPattern = regexp.MustCompile(`\d+[.,]\d{2}\b`)
	looseLongDigits    = regexp.MustCompile(`\d{6,}`)
	looseCodePattern   = regexp.MustCompile(`\b[A-F0-9]{8,}\b`)
)

// bucketLoose guesses fields out of an unstructured payload string.
func bucketLoose(payload *domain.CodePayload, raw string) {
	if date := looseDatePattern.FindString(raw); date != "" {
		payload.Date = date
	}
	if amount := looseAmountPattern.FindString(raw); amount != "" {
		if value, err := strconv.ParseFloat(strings.Replace(amount, ",", ".", 1), 64); err == nil {
			payload.Amount = value
		}
	}
	if digits := looseLongDigits.FindString(raw); digits != "" {
		payload.ReceiptID = digits
	}
	if code := looseCodePattern.FindString(strings.ToUpper(raw)); code != "" {
		payload.VerificationCode = code
	}
}
