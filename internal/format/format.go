// Package format renders numbers, amounts, percentages and dates for
// display. The default locale is de-DE.
package format

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when no locale is given or it cannot be parsed.
var DefaultLocale = language.MustParse("de-DE")

const nbsp = "\u00a0"

// Formatter formats values for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Formatter for tag.
func New(tag language.Tag) *Formatter {
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// ForLocale parses a BCP 47 locale such as "de-DE" or an Accept-Language
// header value, whose highest weighted tag wins. Empty or malformed locales
// fall back to DefaultLocale.
func ForLocale(locale string) *Formatter {
	if locale == "" {
		return New(DefaultLocale)
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return New(DefaultLocale)
	}
	return New(tags[0])
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag { return f.tag }

// Number formats v with exactly decimals fraction digits and locale grouping.
func (f *Formatter) Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return f.printer.Sprintf("%.*f", decimals, v)
}

// Currency formats amount in the ISO 4217 currency code, e.g.
// "1.234,50 €" for EUR in de-DE.
func (f *Formatter) Currency(amount float64, code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", eris.Wrapf(err, "format: currency %q", code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	sym := f.printer.Sprint(currency.Symbol(unit))
	return f.Number(amount, scale) + nbsp + sym, nil
}

// Percent formats a value already expressed in percent, e.g. 12.5 becomes
// "12,50 %".
func (f *Formatter) Percent(value float64, decimals int) string {
	return f.Number(value, decimals) + nbsp + "%"
}

// Date formats t as a numeric day, month and year.
func (f *Formatter) Date(t time.Time) string {
	base, _ := f.tag.Base()
	if base.String() == "en" {
		return t.Format("01/02/2006")
	}
	return t.Format("02.01.2006")
}

// DateTime formats t with date, hour and minute.
func (f *Formatter) DateTime(t time.Time) string {
	base, _ := f.tag.Base()
	if base.String() == "en" {
		return t.Format("01/02/2006, 15:04")
	}
	return t.Format("02.01.2006, 15:04")
}

var std = New(DefaultLocale)

// FormatCurrency formats amount in de-DE. An empty code means EUR.
func FormatCurrency(amount float64, code string) (string, error) {
	if code == "" {
		code = "EUR"
	}
	return std.Currency(amount, code)
}

// FormatPercent formats a percentage value in de-DE.
func FormatPercent(value float64, decimals int) string {
	return std.Percent(value, decimals)
}

// FormatDate formats t in de-DE.
func FormatDate(t time.Time) string { return std.Date(t) }

// FormatDateTime formats t in de-DE.
func FormatDateTime(t time.Time) string { return std.DateTime(t) }
