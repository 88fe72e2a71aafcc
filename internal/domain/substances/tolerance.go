package substances

import (
	"bytes"
	"encoding/json"
)

// ToleranceKind distingue las formas en que el catálogo entrega "tolerance".
type ToleranceKind string

const (
	// ToleranceUnknown: null, ausente o una forma que no reconocemos.
	ToleranceUnknown    ToleranceKind = "unknown"
	ToleranceStructured ToleranceKind = "structured"
	ToleranceText       ToleranceKind = "text"
)

// Tolerance reemplaza el campo dinámico del catálogo por una variante explícita.
type Tolerance struct {
	Kind ToleranceKind

	// Kind == structured
	Full string
	Half string
	Zero string

	// Kind == text
	Text string
}

type structuredTolerance struct {
	Full string `json:"full,omitempty"`
	Half string `json:"half,omitempty"`
	Zero string `json:"zero,omitempty"`
}

func (t Tolerance) IsKnown() bool {
	return t.Kind == ToleranceStructured || t.Kind == ToleranceText
}

func (t *Tolerance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Tolerance{Kind: ToleranceUnknown}

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if s != "" {
			*t = Tolerance{Kind: ToleranceText, Text: s}
		}
	case '{':
		var st structuredTolerance
		if err := json.Unmarshal(b, &st); err != nil {
			return nil
		}
		if st.Full == "" && st.Half == "" && st.Zero == "" {
			return nil
		}
		*t = Tolerance{Kind: ToleranceStructured, Full: st.Full, Half: st.Half, Zero: st.Zero}
	}
	return nil
}

func (t Tolerance) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case ToleranceStructured:
		return json.Marshal(structuredTolerance{Full: t.Full, Half: t.Half, Zero: t.Zero})
	case ToleranceText:
		return json.Marshal(t.Text)
	default:
		return []byte("null"), nil
	}
}
