package monitor

import (
	"fmt"
	"strings"
	"time"

	"deckwatch/pkg/stock"
)

// maxListed caps how many offers a stock alert spells out.
const maxListed = 10

func stockMessage(qualifying []stock.Entry, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock detectado\n%d artículo(s) posiblemente en stock.\n", len(qualifying))
	for i, e := range qualifying {
		if i == maxListed {
			fmt.Fprintf(&b, "... y %d más\n", len(qualifying)-maxListed)
			break
		}
		price := "precio desconocido"
		if e.Price != nil {
			price = *e.Price
		}
		fmt.Fprintf(&b, "%s — %s (%s)\n", e.Title, price, e.Availability)
	}
	if target != "" {
		b.WriteString(target)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renewedMessage(strategy string) string {
	return fmt.Sprintf("Sesión renovada automáticamente (%s).", strategy)
}

func recoveryFailedMessage(err error) string {
	return fmt.Sprintf("La recuperación automática de la sesión falló.\n%v\nUsa refresh-cookies o POST /api/v1/session/refresh.", err)
}

func checkFailedMessage(err error) string {
	return fmt.Sprintf("Error al comprobar stock tras renovar la sesión.\n%v", err)
}

func startupMessage(target string, interval time.Duration) string {
	return fmt.Sprintf("Iniciando vigilancia de stock cada %s.\n%s", interval, target)
}
