// Package viewmodels derives the flat table rows and detail panels the console
// screens show from raw storefront records.
package viewmodels

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is how every date cell is rendered.
const DateLayout = "Jan 2, 2006"

// NotProvided fills optional seller fields that are missing.
const NotProvided = "Not Provided"

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English, cases.NoLower)
)

// FormatRupees renders an amount as "₹" followed by grouped digits. Fractions
// are kept only when present: 1599 -> "₹1,599", 1599.5 -> "₹1,599.50".
func FormatRupees(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsInteger() {
		return printer.Sprintf("₹%d", amount.IntPart())
	}
	return printer.Sprintf("₹%.2f", amount.InexactFloat64())
}

// Money converts a wire price into a decimal.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FormatDate renders t with DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Label turns a camelCase key into a capitalised label: "clockSpeed" -> "Clock Speed".
func Label(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return title.String(strings.TrimSpace(b.String()))
}

// StatusLabel capitalises a lowercase status: "pending" -> "Pending".
func StatusLabel(status string) string {
	return title.String(status)
}

// VerifiedLabel is the text next to a verification icon.
func VerifiedLabel(ok bool) string {
	if ok {
		return "Verified"
	}
	return "Not Verified"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
