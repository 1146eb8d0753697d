// Package fiscal: cálculo del CUDE (Código Único de Documento Equivalente)
// para el documento equivalente POS según el Anexo Técnico DIAN 1.2.
// Algoritmo: SHA-384. Fórmula de concatenación en el orden estricto definido por la DIAN.

package fiscal

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CodImpIVA es el código de impuesto DIAN para IVA en la cadena CUDE.
const CodImpIVA = "01"

// DocAdqConsumidorFinal es el documento genérico del adquiriente cuando la
// venta no identifica cliente (consumidor final).
const DocAdqConsumidorFinal = "222222222222"

// CudeParams contiene los datos para calcular el CUDE en el orden exigido por la DIAN.
type CudeParams struct {
	NumDoc      string          // Número del documento (prefijo + consecutivo, sin espacios)
	FecDoc      string          // Fecha de emisión YYYY-MM-DD
	HorDoc      string          // Hora de emisión HH:mm:ss-05:00
	ValDoc      decimal.Decimal // Valor antes de impuestos (subtotal)
	ValImp      decimal.Decimal // Valor total IVA (código 01)
	ValTot      decimal.Decimal // Valor total a pagar
	NitOfe      string          // NIT del vendedor; el dígito de verificación, si viene, se descarta
	DocAdq      string          // Documento del adquiriente; vacío = consumidor final
	SoftwarePin string          // PIN del software registrado ante la DIAN
	TipoAmb     string          // '1' = Producción, '2' = Pruebas
}

// CudeCalculatorService calcula el CUDE del documento equivalente POS.
type CudeCalculatorService struct{}

// NewCudeCalculatorService crea el servicio.
func NewCudeCalculatorService() *CudeCalculatorService {
	return &CudeCalculatorService{}
}

// Calculate genera el CUDE (hash hexadecimal) a partir de los parámetros.
// Fórmula (sin separadores): NumDoc + FecDoc + HorDoc + ValDoc + CodImp_01 + ValImp_01 + ValTot + NitOfe + DocAdq + SoftwarePin + TipoAmb
// Algoritmo: SHA-384. Montos sin separador de miles, con punto decimal (ej: 1500.00).
func (s *CudeCalculatorService) Calculate(p *CudeParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("fiscal: CudeParams es obligatorio")
	}

	numDoc := regexp.MustCompile(`\s+`).ReplaceAllString(strings.TrimSpace(p.NumDoc), "")
	if numDoc == "" {
		return "", fmt.Errorf("fiscal: NumDoc es obligatorio")
	}
	if p.FecDoc == "" {
		return "", fmt.Errorf("fiscal: FecDoc es obligatoria (YYYY-MM-DD)")
	}
	if p.HorDoc == "" {
		return "", fmt.Errorf("fiscal: HorDoc es obligatoria (HH:mm:ss-05:00)")
	}

	nitOfe := onlyDigits(p.NitOfe)
	if nitOfe == "" {
		return "", fmt.Errorf("fiscal: NitOfe es obligatorio para el CUDE")
	}
	// La cadena CUDE lleva el NIT sin dígito de verificación. Si el NIT viene
	// con un DV correcto al final, se descarta.
	if len(nitOfe) == 10 && nitOfe[9] == checkDigit(nitOfe[:9]) {
		nitOfe = nitOfe[:9]
	}
	docAdq := onlyDigits(p.DocAdq)
	if docAdq == "" {
		docAdq = DocAdqConsumidorFinal
	}
	if p.SoftwarePin == "" {
		return "", fmt.Errorf("fiscal: SoftwarePin es obligatorio para el CUDE")
	}
	tipoAmb := p.TipoAmb
	if tipoAmb == "" {
		tipoAmb = "1"
	}

	// Orden estricto DIAN (sin separadores)
	cadena := numDoc +
		p.FecDoc +
		p.HorDoc +
		formatAmount(p.ValDoc) +
		CodImpIVA + formatAmount(p.ValImp) +
		formatAmount(p.ValTot) +
		nitOfe +
		docAdq +
		p.SoftwarePin +
		tipoAmb

	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// formatAmount formatea montos para la cadena CUDE: sin separador de miles, punto decimal, 2 decimales (ej: 1500.00).
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// onlyDigits deja solo dígitos 0-9 (para NIT y documento).
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
