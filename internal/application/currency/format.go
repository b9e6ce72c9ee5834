package currency

import (
	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatAmount presenta un monto con su código de moneda y separadores
// de la localización es-CO, ej. "USD 1.234,50". Solo para despliegue; la
// conversión a float no toca ningún monto persistido.
func FormatAmount(code string, amount decimal.Decimal) string {
	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		return code + " " + amount.StringFixed(2)
	}
	return displayPrinter.Sprintf("%v", xcurrency.ISO(unit.Amount(amount.InexactFloat64())))
}
