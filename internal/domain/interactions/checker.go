package interactions

import (
	"context"
	"strings"
	"time"

	"dose-timeline/internal/domain/doselog"
	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/domain/timeline"
	"dose-timeline/internal/platform/logger"
)

// DetailLookup es el pedazo del catálogo que necesita el checker.
type DetailLookup interface {
	GetDetail(ctx context.Context, name string) (substances.Substance, error)
}

// EntrySource es el pedazo del store de dosis que necesita el checker.
type EntrySource interface {
	List(ctx context.Context) []doselog.Entry
}

// Checker arma el candidato y el set activo y corre Detect.
// Es solo informativo; nunca bloquea un alta.
type Checker struct {
	catalog DetailLookup
	entries EntrySource
	policy  Policy
	log     logger.Logger
	now     func() time.Time

	// OnWarning se llama con cada advertencia emitida (metrics).
	OnWarning func(Finding)
}

func NewChecker(catalog DetailLookup, entries EntrySource, policy Policy, log logger.Logger) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	return &Checker{
		catalog: catalog,
		entries: entries,
		policy:  policy,
		log:     log.With(map[string]any{"component": "interactions"}),
		now:     time.Now,
	}
}

func (c *Checker) Policy() Policy { return c.policy }

// WithClock reemplaza el reloj (tests).
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// Check evalúa si registrar name ahora choca con alguna sustancia activa.
func (c *Checker) Check(ctx context.Context, name string) (Finding, bool) {
	list := c.entries.List(ctx)
	view := timeline.Partition(list, c.now())
	if len(view.Active) == 0 {
		return Finding{}, false
	}

	cand := Candidate{Name: name, Interactions: c.candidateTable(ctx, name, list)}
	f, ok := Detect(cand, activeSet(view), c.policy)
	if ok {
		c.log.Info("interaction warning", map[string]any{
			"substance": name,
			"with":      f.With,
			"severity":  string(f.Severity),
		})
		if c.OnWarning != nil {
			c.OnWarning(f)
		}
	}
	return f, ok
}

// candidateTable usa el catálogo en vivo; si no responde o no conoce el nombre,
// cae al snapshot del registro más reciente de esa sustancia.
func (c *Checker) candidateTable(ctx context.Context, name string, list []doselog.Entry) []substances.Interaction {
	if c.catalog != nil {
		sub, err := c.catalog.GetDetail(ctx, name)
		if err == nil {
			return sub.InteractionsFlat
		}
		c.log.Debug("catalog detail unavailable, using snapshot", map[string]any{"substance": name, "error": err})
	}

	var (
		latest doselog.Entry
		found  bool
	)
	for _, e := range list {
		if !substances.SameName(e.SubstanceName, name) || e.SubstanceSnapshot == nil {
			continue
		}
		if !found || e.Timestamp > latest.Timestamp {
			latest = e
			found = true
		}
	}
	if !found {
		return nil
	}
	return latest.Interactions()
}

// activeSet junta las activas por nombre, quedándose con la tabla de la dosis más reciente.
func activeSet(v timeline.View) []ActiveSubstance {
	out := make([]ActiveSubstance, 0, len(v.Active))
	seen := map[string]struct{}{}
	for _, w := range v.Active { // ya viene ordenado Start desc
		key := strings.ToLower(strings.TrimSpace(w.Entry.SubstanceName))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ActiveSubstance{Name: w.Entry.SubstanceName, Interactions: w.Entry.Interactions()})
	}
	return out
}
