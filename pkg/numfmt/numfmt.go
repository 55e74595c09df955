package numfmt

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ParseDecimal converts a user-typed decimal string into a decimal value.
// Both "1.234,56" and "1,234.56" styles are accepted: when both separators
// appear, the rightmost one is the decimal separator. A lone comma is always
// decimal; a lone dot is decimal unless several dot-groups make it an
// unambiguous thousands notation. Unparsable input degrades to zero, never
// an error, because the caller may be reading a field mid-keystroke.
func ParseDecimal(raw string) decimal.Decimal {
	cleaned := normalize(raw)
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// ParsePositive parses like ParseDecimal but floors negatives at zero.
func ParsePositive(raw string) decimal.Decimal {
	value := ParseDecimal(raw)
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" {
		return ""
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			// several comma groups can only be thousands notation
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// Formatter renders decimals for display in a fixed locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a formatter for the given language and currency unit.
func NewFormatter(tag language.Tag, unit currency.Unit) *Formatter {
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// NewBrazilianFormatter returns the formatter matching the ERP's home
// locale: pt-BR grouping with BRL.
func NewBrazilianFormatter() *Formatter {
	return NewFormatter(language.BrazilianPortuguese, currency.BRL)
}

// Currency renders a monetary amount with symbol and two fraction digits.
func (f *Formatter) Currency(value decimal.Decimal) string {
	symbol := currency.Symbol(f.unit)
	amount := number.Decimal(value.InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	)
	return f.printer.Sprintf("%v %v", symbol, amount)
}

// Quantity renders a quantity with up to four fraction digits and no
// trailing noise for whole numbers.
func (f *Formatter) Quantity(value decimal.Decimal) string {
	amount := number.Decimal(value.InexactFloat64(),
		number.MaxFractionDigits(4),
	)
	return f.printer.Sprintf("%v", amount)
}
