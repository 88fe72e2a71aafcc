package doselog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"dose-timeline/internal/domain/substances"
)

// ParseAmount acepta solo números finitos > 0. Nunca deja pasar NaN/Inf.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: amount %q is not a number", ErrValidation, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return v, nil
}

// NewDraft arma el borrador a partir del registro de catálogo elegido:
// resuelve la vía, la unidad, la duración estimada y el snapshot de interacciones.
func NewDraft(sub substances.Substance, route, amount string, at time.Time, notes string) Draft {
	unit := substances.DefaultDoseUnit
	duration := substances.DefaultDurationMinutes

	if roa, ok := sub.Route(route); ok {
		route = roa.Name
		unit = roa.DoseUnit()
		duration = substances.ResolveDurationMinutes(roa.Duration)
	}

	var snap *Snapshot
	if sub.InteractionsFlat != nil {
		snap = &Snapshot{
			InteractionsFlat: append([]substances.Interaction(nil), sub.InteractionsFlat...),
		}
		snap.normalizeStatuses()
	}

	return Draft{
		SubstanceName:            sub.Name,
		SubstanceID:              sub.ID,
		Amount:                   amount,
		Unit:                     unit,
		Route:                    strings.TrimSpace(route),
		Timestamp:                at,
		EstimatedDurationMinutes: &duration,
		Snapshot:                 snap,
		Notes:                    notes,
	}
}

func (d Draft) validate() (float64, error) {
	if strings.TrimSpace(d.SubstanceName) == "" {
		return 0, fmt.Errorf("%w: substance is required", ErrValidation)
	}
	if strings.TrimSpace(d.Route) == "" {
		return 0, fmt.Errorf("%w: route of administration is required", ErrValidation)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return 0, err
	}
	if d.EstimatedDurationMinutes != nil {
		if err := validateDuration(*d.EstimatedDurationMinutes); err != nil {
			return 0, err
		}
	}
	return amount, nil
}

// validateEntry se usa al importar: mismas reglas que Add sobre un registro ya armado.
func validateEntry(e Entry) error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("%w: id is required", ErrValidation)
	case strings.TrimSpace(e.SubstanceName) == "":
		return fmt.Errorf("%w: entry %s: substance is required", ErrValidation, e.ID)
	case strings.TrimSpace(e.Route) == "":
		return fmt.Errorf("%w: entry %s: route of administration is required", ErrValidation, e.ID)
	case math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount <= 0:
		return fmt.Errorf("%w: entry %s: amount must be a finite positive number", ErrValidation, e.ID)
	case e.EstimatedDurationMinutes < 0 || e.EstimatedDurationMinutes > substances.MaxDurationMinutes:
		return fmt.Errorf("%w: entry %s: estimated duration must be between 0 and %d minutes",
			ErrValidation, e.ID, substances.MaxDurationMinutes)
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes < 0 || minutes > substances.MaxDurationMinutes {
		return fmt.Errorf("%w: estimated duration must be between 0 and %d minutes",
			ErrValidation, substances.MaxDurationMinutes)
	}
	return nil
}
