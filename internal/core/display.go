package core

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayLocale is the single locale used for every formatted number.
var DisplayLocale = language.Vietnamese

const currencySymbol = "₫"

var printer = message.NewPrinter(DisplayLocale)

// FormatAmount renders an amount with locale grouping, e.g. "1.000.000 ₫".
func FormatAmount(v int64) string {
	return printer.Sprintf("%d %s", v, currencySymbol)
}

// FormatCount renders a plain count with locale grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// MonthLabel renders a period as "Tháng 3/2025".
func MonthLabel(p Period) string {
	return printer.Sprintf("Tháng %d/%s", int(p.Month), strconv.Itoa(p.Year))
}
