package substances

import "strings"

// Range es un rango numérico sin unidad (dosis, biodisponibilidad).
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TimedRange es un rango de duración con su unidad ("minutes", "hours").
type TimedRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Units string  `json:"units"`
}

type Dose struct {
	Units     string   `json:"units"`
	Threshold *float64 `json:"threshold"`
	Light     *Range   `json:"light"`
	Common    *Range   `json:"common"`
	Strong    *Range   `json:"strong"`
	Heavy     *float64 `json:"heavy"`
}

// Duration: todas las fases son opcionales; el catálogo suele traer datos incompletos.
type Duration struct {
	Onset     *TimedRange `json:"onset,omitempty"`
	Comeup    *TimedRange `json:"comeup,omitempty"`
	Peak      *TimedRange `json:"peak,omitempty"`
	Offset    *TimedRange `json:"offset,omitempty"`
	Afterglow *TimedRange `json:"afterglow,omitempty"`
	Total     *TimedRange `json:"total,omitempty"`
}

// Roa = route of administration (oral, insufflated, ...).
type Roa struct {
	Name            string    `json:"name"`
	Dose            *Dose     `json:"dose"`
	Duration        *Duration `json:"duration"`
	Bioavailability *Range    `json:"bioavailability"`
}

const DefaultDoseUnit = "mg"

// DoseUnit devuelve la unidad de dosis de la vía, o "mg" si el catálogo no la trae.
func (r Roa) DoseUnit() string {
	if r.Dose != nil && strings.TrimSpace(r.Dose.Units) != "" {
		return strings.TrimSpace(r.Dose.Units)
	}
	return DefaultDoseUnit
}

type Interaction struct {
	Name   string   `json:"name"`
	Status Severity `json:"status"`
	Note   string   `json:"note,omitempty"`
}

type Image struct {
	Thumb string `json:"thumb"`
}

// Substance es el registro completo del catálogo.
type Substance struct {
	ID                 string        `json:"_id"`
	Name               string        `json:"name"`
	URL                string        `json:"url,omitempty"`
	Featured           bool          `json:"featured,omitempty"`
	Summary            string        `json:"summary,omitempty"`
	Roas               []Roa         `json:"roas"`
	Images             []Image       `json:"images,omitempty"`
	InteractionsFlat   []Interaction `json:"interactions_flat"`
	AddictionPotential string        `json:"addictionPotential,omitempty"`
	Tolerance          Tolerance     `json:"tolerance"`
}

// Item es la versión liviana que devuelven search/listAll.
type Item struct {
	Name     string `json:"name"`
	Summary  string `json:"summary,omitempty"`
	Featured bool   `json:"featured,omitempty"`
	URL      string `json:"url,omitempty"`
}

func (s Substance) Item() Item {
	return Item{Name: s.Name, Summary: s.Summary, Featured: s.Featured, URL: s.URL}
}

// Route busca la vía por nombre (case-insensitive).
func (s Substance) Route(name string) (Roa, bool) {
	name = strings.TrimSpace(name)
	for _, r := range s.Roas {
		if strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return r, true
		}
	}
	return Roa{}, false
}

// DefaultRoute es la primera vía del catálogo (la que se preselecciona al registrar).
func (s Substance) DefaultRoute() (Roa, bool) {
	if len(s.Roas) == 0 {
		return Roa{}, false
	}
	return s.Roas[0], true
}

// DurationFor resuelve la duración total estimada para la vía dada.
func (s Substance) DurationFor(route string) int {
	r, ok := s.Route(route)
	if !ok {
		return DefaultDurationMinutes
	}
	return ResolveDurationMinutes(r.Duration)
}

// SameName compara nombres de sustancia como lo hace el detector (case-insensitive, sin espacios extremos).
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
