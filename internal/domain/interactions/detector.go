package interactions

import (
	"dose-timeline/internal/domain/substances"
)

// Policy controla qué se reporta.
type Policy struct {
	// Threshold es la severidad mínima que genera advertencia.
	Threshold substances.Severity

	// Bidirectional además busca al candidato en las tablas de las sustancias activas.
	// Por defecto solo se consulta la tabla del candidato.
	Bidirectional bool
}

func DefaultPolicy() Policy {
	return Policy{Threshold: substances.SeverityUnsafe}
}

func (p Policy) threshold() substances.Severity {
	if p.Threshold.Rank() == 0 {
		// Safe/Unknown no tienen sentido como umbral: se reportaría todo
		return substances.SeverityUnsafe
	}
	return p.Threshold
}

// Candidate es la sustancia que el usuario está por registrar.
type Candidate struct {
	Name         string
	Interactions []substances.Interaction
}

// ActiveSubstance es una sustancia con dosis activa y (si hay) su tabla snapshot.
type ActiveSubstance struct {
	Name         string
	Interactions []substances.Interaction
}

// Finding es la advertencia de mayor severidad encontrada.
type Finding struct {
	With     string              `json:"with"`
	Severity substances.Severity `json:"severity"`
	Note     string              `json:"note,omitempty"`

	// Source: "candidate" si vino de la tabla del candidato, "active" si de la tabla de la activa.
	Source string `json:"source"`
}

// Detect busca la interacción más grave entre el candidato y las activas.
// Mayor rank gana; a igual rank gana la primera en orden de tabla.
// Solo se reporta si alcanza el umbral de la policy.
func Detect(c Candidate, active []ActiveSubstance, p Policy) (Finding, bool) {
	var (
		best  Finding
		found bool
	)

	consider := func(f Finding) {
		if !found || f.Severity.Rank() > best.Severity.Rank() {
			best = f
			found = true
		}
	}

	for _, it := range c.Interactions {
		for _, a := range active {
			if substances.SameName(it.Name, a.Name) {
				consider(Finding{With: a.Name, Severity: it.Status, Note: it.Note, Source: "candidate"})
				break
			}
		}
	}

	if p.Bidirectional {
		for _, a := range active {
			for _, it := range a.Interactions {
				if substances.SameName(it.Name, c.Name) {
					consider(Finding{With: a.Name, Severity: it.Status, Note: it.Note, Source: "active"})
					break
				}
			}
		}
	}

	if !found || !best.Severity.AtLeast(p.threshold()) {
		return Finding{}, false
	}
	return best, true
}
