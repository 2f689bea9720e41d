package payment

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Facts parsed out of the raw text of a payment screenshot. Any field
// may be absent; the caller decides which absences are fatal.
type Facts struct {
	Amount          *decimal.Decimal
	TransactionID   string
	TransactionDate *time.Time
}

// ExtractFacts runs all extractors over the raw text
func ExtractFacts(text string) Facts {
	return Facts{
		Amount:          ExtractAmount(text),
		TransactionID:   ExtractTransactionID(text),
		TransactionDate: ExtractTransactionDate(text),
	}
}

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.RequireFromString("999999.99")

	// Ordered by confidence. A currency-marked amount beats a labeled
	// one, which beats a bare decimal anywhere in the text.
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:USD|\$|US\$)\s*([\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)([\d,]+\.\d{2})\s*(?:USD|\$)`),
		regexp.MustCompile(`(?i)(?:Amount|Total|Received|You received)\s*:?\s*(?:USD|\$)?\s*([\d,]+\.\d{2})`),
		regexp.MustCompile(`([\d,]+\.\d{2})`),
	}
)

// ExtractAmount scans the text for a monetary amount. Tiers are tried
// in order and the first match within [0.01, 999999.99] wins; lower
// tiers are never consulted once a higher tier has any valid match.
func ExtractAmount(text string) *decimal.Decimal {
	for _, pattern := range amountPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(match[1], ",", "")
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				continue
			}
			if amount.GreaterThanOrEqual(minAmount) && amount.LessThanOrEqual(maxAmount) {
				return &amount
			}
		}
	}
	return nil
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	taxIDPattern      = regexp.MustCompile(`(?i)(?:Tax\s*ID|TaxID)\s*:?\s*([0-9]{10,15})`)
	trxIDPattern      = regexp.MustCompile(`(?i)(?:Trx\.?\s*ID|Transaction\s*ID|TRX\s*ID)\s*:?\s*([0-9]{10,15})`)
	referencePattern  = regexp.MustCompile(`(?i)(?:REF|Reference|Ref\.)\s*:?\s*([A-Z0-9]{8,20})`)
	standaloneDigits  = regexp.MustCompile(`\b([0-9]{10,15})\b`)
	bankAlphaNumeric  = regexp.MustCompile(`\b([A-Z]{2}[0-9]{10,15})\b`)
)

// ExtractTransactionID scans the text for a transaction identifier.
// Labeled identifiers (Tax ID, Trx ID, Reference) are preferred over
// bare digit runs; the last tier matches bank formats like
// MM7492746284.
func ExtractTransactionID(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	normalized := whitespaceRun.ReplaceAllString(text, " ")

	for _, pattern := range []*regexp.Regexp{
		taxIDPattern,
		trxIDPattern,
		referencePattern,
		standaloneDigits,
		bankAlphaNumeric,
	} {
		if m := pattern.FindStringSubmatch(normalized); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

var (
	monthDayYearTime = regexp.MustCompile(`(?i)([A-Za-z]{3})\s+(\d{1,2}),?\s+(\d{4})\s*[|]?\s*(\d{1,2}):(\d{2})\s*(AM|PM)?`)
	monthDayYear     = regexp.MustCompile(`(?i)([A-Za-z]{3})\s+(\d{1,2}),?\s+(\d{4})`)
	dayMonthYear     = regexp.MustCompile(`(\d{2})[/-](\d{2})[/-](\d{4})`)
	yearMonthDay     = regexp.MustCompile(`(\d{4})[/-](\d{2})[/-](\d{2})`)
)

// ExtractTransactionDate scans the text for the transaction timestamp.
// Banking apps print dates like "Oct 19, 2025 | 4:01PM"; numeric forms
// DD/MM/YYYY and YYYY-MM-DD are accepted as fallbacks at midnight.
func ExtractTransactionDate(text string) *time.Time {
	if m := monthDayYearTime.FindStringSubmatch(text); m != nil {
		ampm := m[6]
		if ampm == "" {
			ampm = "AM"
		}
		raw := fmt.Sprintf("%s %s, %s %s:%s%s", m[1], m[2], m[3], m[4], m[5], strings.ToUpper(ampm))
		if ts, err := time.Parse("Jan 2, 2006 3:04PM", raw); err == nil {
			return &ts
		}
	}

	if m := monthDayYear.FindStringSubmatch(text); m != nil {
		raw := fmt.Sprintf("%s %s, %s", m[1], m[2], m[3])
		if ts, err := time.Parse("Jan 2, 2006", raw); err == nil {
			return &ts
		}
	}

	if m := dayMonthYear.FindStringSubmatch(text); m != nil {
		raw := fmt.Sprintf("%s-%s-%sT00:00:00", m[3], m[2], m[1])
		if ts, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return &ts
		}
	}

	if m := yearMonthDay.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[0], "/", "-") + "T00:00:00"
		if ts, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return &ts
		}
	}

	return nil
}
