package substances

import (
	"math"
	"strings"
)

// DefaultDurationMinutes se usa cuando la vía no trae rango "total".
// Aproximación documentada: el timeline necesita alguna duración para mostrar el timer.
const DefaultDurationMinutes = 240

// MaxDurationMinutes es el techo de una duración estimada (un año).
// Mantiene End() lejos del overflow de time.Duration.
const MaxDurationMinutes = 365 * 24 * 60

// ResolveDurationMinutes toma el máximo del rango total y lo pasa a minutos.
// Sin total, con unidad desconocida o con valores no finitos => DefaultDurationMinutes.
func ResolveDurationMinutes(d *Duration) int {
	if d == nil || d.Total == nil {
		return DefaultDurationMinutes
	}

	factor, ok := minutesPerUnit(d.Total.Units)
	if !ok {
		return DefaultDurationMinutes
	}

	v := d.Total.Max
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultDurationMinutes
	}

	minutes := math.Round(v * factor)
	if minutes < 0 {
		return 0
	}
	if minutes > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return int(minutes)
}

func minutesPerUnit(unit string) (float64, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "s") {
	case "minute", "min", "":
		// sin unidad asumimos minutos (así vienen los datos de TripSit)
		return 1, true
	case "hour", "hr", "h":
		return 60, true
	case "second", "sec":
		return 1.0 / 60, true
	case "day":
		return 24 * 60, true
	default:
		return 0, false
	}
}
