package doselog

import (
	"time"

	"dose-timeline/internal/domain/substances"
)

const (
	DefaultDurationMinutes = substances.DefaultDurationMinutes
	DefaultUnit            = substances.DefaultDoseUnit
)

// Snapshot es la copia inmutable de las interacciones del catálogo al momento de registrar.
// Permite detectar interacciones aunque el catálogo cambie o no esté disponible.
type Snapshot struct {
	InteractionsFlat []substances.Interaction `json:"interactions_flat"`
}

// normalizeStatuses deja cada status en el vocabulario de Severity
// (un status ausente en el catálogo queda como Unknown).
func (s *Snapshot) normalizeStatuses() {
	if s == nil {
		return
	}
	for i := range s.InteractionsFlat {
		s.InteractionsFlat[i].Status = substances.ParseSeverity(string(s.InteractionsFlat[i].Status))
	}
}

// Entry es una dosis registrada por el usuario.
// El JSON es el formato de export (compatible con los backups de la app móvil).
type Entry struct {
	ID            string  `json:"id"`
	SubstanceName string  `json:"substanceName"`
	SubstanceID   string  `json:"substanceId,omitempty"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	Route         string  `json:"roa"`

	// Timestamp es el momento de consumo (ms epoch). Editable; no indica orden de creación.
	Timestamp int64 `json:"timestamp"`

	// EstimatedDurationMinutes se fija al crear; solo cambia por Update explícito.
	EstimatedDurationMinutes int `json:"estimatedDurationMinutes"`

	SubstanceSnapshot *Snapshot `json:"substanceSnapshot,omitempty"`
	Notes             string    `json:"notes"`
}

func (e Entry) Start() time.Time {
	return time.UnixMilli(e.Timestamp)
}

func (e Entry) Duration() time.Duration {
	return time.Duration(e.EstimatedDurationMinutes) * time.Minute
}

func (e Entry) End() time.Time {
	return e.Start().Add(e.Duration())
}

// Interactions devuelve la tabla del snapshot (nil si no hay).
func (e Entry) Interactions() []substances.Interaction {
	if e.SubstanceSnapshot == nil {
		return nil
	}
	return e.SubstanceSnapshot.InteractionsFlat
}

func (e Entry) clone() Entry {
	if e.SubstanceSnapshot != nil {
		snap := *e.SubstanceSnapshot
		if snap.InteractionsFlat != nil {
			snap.InteractionsFlat = append([]substances.Interaction(nil), snap.InteractionsFlat...)
		}
		e.SubstanceSnapshot = &snap
	}
	return e
}

// Draft es la entrada de Add. Amount llega como texto (input del usuario).
type Draft struct {
	SubstanceName string
	SubstanceID   string
	Amount        string
	Unit          string
	Route         string

	// Timestamp zero => ahora.
	Timestamp time.Time

	// nil => substances.DefaultDurationMinutes (entrada ad hoc sin datos de catálogo).
	EstimatedDurationMinutes *int

	Snapshot *Snapshot
	Notes    string
}

// Patch: nil = no tocar.
type Patch struct {
	Amount                   *string
	Notes                    *string
	Timestamp                *time.Time
	EstimatedDurationMinutes *int
}

func (p Patch) IsEmpty() bool {
	return p.Amount == nil && p.Notes == nil && p.Timestamp == nil && p.EstimatedDurationMinutes == nil
}

type Stats struct {
	TotalLogs        int `json:"total_logs"`
	UniqueSubstances int `json:"unique_substances"`
}

type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)
