package timeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"dose-timeline/internal/domain/doselog"
)

// Window es la vista derivada de una dosis en un instante dado. Nunca se persiste.
type Window struct {
	Entry           doselog.Entry
	Start           time.Time
	End             time.Time
	Active          bool
	ProgressPercent float64
}

// View separa el historial en activas e históricas. La partición es total y disjunta.
type View struct {
	Now     time.Time
	Active  []Window
	History []Window
}

// Compute calcula la ventana de efecto de e en now.
//
// Una dosis está activa si tiene duración > 0 y Start <= now < End.
// Con duración 0 nunca está activa: progreso 100 desde Start, 0 antes.
// Una dosis con fecha futura no está activa y su progreso es 0.
func Compute(e doselog.Entry, now time.Time) Window {
	start := e.Start()
	dur := e.Duration()
	end := start.Add(dur)

	w := Window{Entry: e, Start: start, End: end}

	if dur <= 0 {
		if !now.Before(start) {
			w.ProgressPercent = 100
		}
		return w
	}

	w.Active = !now.Before(start) && now.Before(end)

	left := end.Sub(now)
	p := (1 - float64(left)/float64(dur)) * 100
	w.ProgressPercent = clamp(p, 0, 100)
	return w
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Partition divide entries en activas (Start desc) e historial (timestamp desc).
// Empates por id para que el orden sea determinístico.
func Partition(entries []doselog.Entry, now time.Time) View {
	v := View{
		Now:     now,
		Active:  make([]Window, 0),
		History: make([]Window, 0, len(entries)),
	}
	for _, e := range entries {
		w := Compute(e, now)
		if w.Active {
			v.Active = append(v.Active, w)
		} else {
			v.History = append(v.History, w)
		}
	}

	sortDesc(v.Active)
	sortDesc(v.History)
	return v
}

func sortDesc(ws []Window) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, b := ws[i].Entry, ws[j].Entry
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		return a.ID < b.ID
	})
}

// ActiveSubstanceNames devuelve los nombres de las dosis activas, sin repetir
// (comparación case-insensitive, se conserva la primera forma vista).
func ActiveSubstanceNames(v View) []string {
	seen := make(map[string]struct{}, len(v.Active))
	out := make([]string, 0, len(v.Active))
	for _, w := range v.Active {
		key := strings.ToLower(strings.TrimSpace(w.Entry.SubstanceName))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w.Entry.SubstanceName)
	}
	return out
}
