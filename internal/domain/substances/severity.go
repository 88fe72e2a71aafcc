package substances

import (
	"encoding/json"
	"strings"
)

// Severity es el riesgo de combinar dos sustancias activas a la vez.
type Severity string

const (
	SeverityDangerous Severity = "Dangerous"
	SeverityUnsafe    Severity = "Unsafe"
	SeverityCaution   Severity = "Caution"
	SeveritySafe      Severity = "Safe"
	SeverityUnknown   Severity = "Unknown"
)

// Rank: Dangerous > Unsafe > Caution > Safe = Unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityDangerous:
		return 3
	case SeverityUnsafe:
		return 2
	case SeverityCaution:
		return 1
	default:
		return 0
	}
}

// AtLeast indica si s es tan grave como other o más.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// ParseSeverity normaliza el status del catálogo. Acepta cualquier casing y
// el vocabulario de combos de TripSit ("Low Risk & Synergy" => Safe).
// Lo desconocido es Unknown.
func ParseSeverity(s string) Severity {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "dangerous":
		return SeverityDangerous
	case "unsafe":
		return SeverityUnsafe
	case "caution":
		return SeverityCaution
	case "safe":
		return SeveritySafe
	}
	if strings.HasPrefix(v, "low risk") {
		return SeveritySafe
	}
	return SeverityUnknown
}

// MarshalJSON escribe siempre un valor del vocabulario: "" sale como Unknown.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(ParseSeverity(string(s))))
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		// null o tipos raros del catálogo => Unknown, no error
		*s = SeverityUnknown
		return nil
	}
	*s = ParseSeverity(raw)
	return nil
}
