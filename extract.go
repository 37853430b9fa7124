package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Field extraction runs on the RAW OCR text, not the normalized form:
// "R$", "****" and line breaks are exactly the signal the patterns need.

// amountPattern captures either one group (a full d+,dd value) or two
// groups (integer and decimal parts that OCR split apart).
type amountPattern struct {
	re    *regexp.Regexp
	split bool
}

// Ordered most-specific first. The split-group voucher patterns must run
// before the generic ones because "refeicao r 23 33" contains no comma at
// all and would otherwise miss.
var amountPatterns = []amountPattern{
	{re: regexp.MustCompile(`(?i)refeicao\s+r\s+(\d+)\s+(\d{2})\b`), split: true},
	{re: regexp.MustCompile(`(?i)alimentacao\s+r\s+(\d+)\s+(\d{2})\b`), split: true},
	{re: regexp.MustCompile(`(?i)valor:\s*r\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{re: regexp.MustCompile(`(?i)valor\s+da\s+\w+\s+r\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{re: regexp.MustCompile(`(?i)valor\s+do\s+\w+\s+r\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{re: regexp.MustCompile(`(?i)(?:total|valor|importo|amount)[\s:]*r\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{re: regexp.MustCompile(`(?i)r\$\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{re: regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d{3})*,\d{2})\s*reais?`)},
	{re: regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2})(?:\s|$)`)},
	{re: regexp.MustCompile(`(\d+,\d)(?:[^0-9]|$)`)},
}

// ExtractAmount returns the receipt's monetary value formatted as
// "R$ <int>,<dec>", or "" when no pattern matches.
func ExtractAmount(text string) string {
	for _, p := range amountPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.split {
			return fmt.Sprintf("R$ %s,%s", m[1], m[2])
		}
		return "R$ " + m[1]
	}
	return ""
}

// lastFourPatterns are tried in priority order; within the first pattern
// that fires, the LAST occurrence wins, because card digits sit near the
// bottom of a receipt.
var lastFourPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)alelo\s+doc\s+(\d+)`),
	regexp.MustCompile(`(?i)doc\s+(\d+)`),
	regexp.MustCompile(`\*{4,}\s*(\d{4})`),
	regexp.MustCompile(`(?i)final\s*(\d{4})`),
	regexp.MustCompile(`(?i)terminado\s+em\s*(\d{4})`),
	regexp.MustCompile(`(?i)cart[aã]o\s*\*{4,}\s*(\d{4})`),
	regexp.MustCompile(`(?m)[a-zA-Z]\s*(\d{4})\s*$`),
	regexp.MustCompile(`(?m)\b(\d{4})\b\s*$`),
	regexp.MustCompile(`(?m)(\d{4})\s*$`),
}

// ExtractLastFourDigits recovers the trailing card digits. Captured runs
// longer than four digits (document numbers) are truncated to their last
// four. Returns "" when nothing matches.
func ExtractLastFourDigits(text string) string {
	for _, re := range lastFourPatterns {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		digits := matches[len(matches)-1][1]
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		return digits
	}
	return ""
}

var (
	cashRE = regexp.MustCompile(`(?i)(?:\ba\s*vista\b|\bavista\b|à\s*vista)`)

	installmentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\s*x\s*(?:de\s*)?r?\$?\d+`),
		regexp.MustCompile(`(?i)(\d{1,2})\s*vezes`),
		regexp.MustCompile(`(?i)(\d{1,2})\s*parcelas?`),
		regexp.MustCompile(`(?i)parcelado\s+em\s+(\d{1,2})`),
	}
)

// ExtractInstallments returns the installment count and its display label.
// Receipts mentioning cash payment, and every non-credit instrument,
// settle in a single installment.
func ExtractInstallments(text, category string) (int, string) {
	if cashRE.MatchString(text) {
		return 1, "1x"
	}
	if category != CategoryCredit {
		return 1, "1x"
	}
	for _, re := range installmentPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(strings.TrimSpace(m[1]))
			if err == nil && n > 0 {
				return n, fmt.Sprintf("%dx", n)
			}
		}
	}
	return 1, "1x"
}

// AnalyzeReceipt is the full OCR-text pipeline: normalize, classify, then
// extract the monetary fields from the raw text, using the classified
// category to decide installment defaulting.
func (c *Classifier) AnalyzeReceipt(raw string) Analysis {
	result := c.Classify(NormalizeText(raw))
	amount := ExtractAmount(raw)
	lastFour := ExtractLastFourDigits(raw)
	installments, label := ExtractInstallments(raw, result.Category)
	return Analysis{
		Category:         result.Category,
		Strategy:         result.Strategy,
		Amount:           amount,
		LastFourDigits:   lastFour,
		Installments:     installments,
		InstallmentLabel: label,
	}
}
