package fiscal

import "fmt"

// Pesos del dígito de verificación del NIT (Orden Administrativa 4 de 1989,
// DIAN), aplicados a los 9 primeros dígitos de izquierda a derecha.
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// ValidateNIT valida que el NIT del negocio tenga un dígito de verificación
// correcto según el algoritmo módulo 11 de la DIAN. Acepta el NIT con o sin
// puntos y guiones: "900123456-8", "900.123.456-8" o "9001234568".
func ValidateNIT(nit string) error {
	digits := onlyDigits(nit)
	if len(digits) < 9 {
		return fmt.Errorf("fiscal: el NIT debe tener al menos 9 dígitos, se encontraron %d", len(digits))
	}
	if len(digits) != 10 {
		return fmt.Errorf("fiscal: el NIT debe incluir dígito de verificación (10 dígitos), se recibieron %d", len(digits))
	}
	expected := checkDigit(digits[:9])
	if digits[9] != expected {
		return fmt.Errorf("fiscal: dígito de verificación del NIT inválido: esperado %c, recibido %c", expected, digits[9])
	}
	return nil
}

// ComputeNITCheckDigit calcula el dígito de verificación para los 9 primeros
// dígitos del NIT.
func ComputeNITCheckDigit(nit string) (byte, error) {
	digits := onlyDigits(nit)
	if len(digits) < 9 {
		return 0, fmt.Errorf("fiscal: se requieren al menos 9 dígitos para calcular el dígito de verificación, se encontraron %d", len(digits))
	}
	return checkDigit(digits[:9]), nil
}

// checkDigit aplica módulo 11 sobre los 9 dígitos base: residuo 0 o 1 es el
// dígito mismo, en otro caso 11 menos el residuo.
func checkDigit(base string) byte {
	var sum int
	for i := 0; i < len(nitWeights); i++ {
		sum += int(base[i]-'0') * nitWeights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder)
	}
	return byte('0' + (11 - remainder))
}
