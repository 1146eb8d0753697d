package sale

import (
	"fmt"
	"math/rand"
	"time"
)

// receiptAttempts intentos de inserción ante colisión del número de recibo.
const receiptAttempts = 3

// generateReceiptNumber arma el número visible del recibo: prefijo, marca de
// tiempo y sufijo aleatorio. La unicidad real la impone el índice único de la
// base de datos; ante colisión el caller regenera y reintenta.
func generateReceiptNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102150405"), rand.Intn(10000))
}
