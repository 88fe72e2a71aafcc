package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dose-timeline/internal/domain/doselog"

	"github.com/go-chi/chi/v5"
)

var t0 = time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

func entry(id, name string, at time.Time, minutes int) doselog.Entry {
	return doselog.Entry{
		ID:                       id,
		SubstanceName:            name,
		Amount:                   1,
		Unit:                     "mg",
		Route:                    "oral",
		Timestamp:                at.UnixMilli(),
		EstimatedDurationMinutes: minutes,
	}
}

func TestCompute_CaffeineScenario(t *testing.T) {
	e := entry("1", "Caffeine", t0, 240)

	w := Compute(e, t0)
	if !w.Active || w.ProgressPercent != 0 {
		t.Fatalf("at t0 expected active with 0%%, got active=%v progress=%v", w.Active, w.ProgressPercent)
	}
	if !w.End.Equal(t0.Add(240 * time.Minute)) {
		t.Fatalf("unexpected end: %v", w.End)
	}

	mid := Compute(e, t0.Add(60*time.Minute))
	if !mid.Active || mid.ProgressPercent != 25 {
		t.Fatalf("after 60 min expected 25%%, got %v", mid.ProgressPercent)
	}

	after := Compute(e, t0.Add(240*time.Minute))
	if after.Active || after.ProgressPercent != 100 {
		t.Fatalf("at end expected history with 100%%, got active=%v progress=%v", after.Active, after.ProgressPercent)
	}
}

func TestCompute_ProgressAlwaysClamped(t *testing.T) {
	durations := []int{0, 1, 30, 240, 10000}
	offsets := []time.Duration{-48 * time.Hour, -time.Minute, 0, time.Second, 2 * time.Hour, 30 * 24 * time.Hour}

	for _, d := range durations {
		for _, off := range offsets {
			w := Compute(entry("x", "X", t0, d), t0.Add(off))
			if w.ProgressPercent < 0 || w.ProgressPercent > 100 {
				t.Fatalf("duration=%d offset=%v: progress %v out of range", d, off, w.ProgressPercent)
			}
			wantActive := d > 0 && off >= 0 && off < time.Duration(d)*time.Minute
			if w.Active != wantActive {
				t.Fatalf("duration=%d offset=%v: active=%v want %v", d, off, w.Active, wantActive)
			}
		}
	}
}

func TestCompute_ZeroDurationIsNeverActive(t *testing.T) {
	e := entry("z", "Z", t0, 0)
	if w := Compute(e, t0); w.Active || w.ProgressPercent != 100 {
		t.Fatalf("at start expected inactive 100%%, got %#v", w)
	}
	if w := Compute(e, t0.Add(-time.Second)); w.Active || w.ProgressPercent != 0 {
		t.Fatalf("before start expected inactive 0%%, got %#v", w)
	}
}

func TestCompute_FutureDatedEntry(t *testing.T) {
	w := Compute(entry("f", "F", t0.Add(time.Hour), 240), t0)
	if w.Active || w.ProgressPercent != 0 {
		t.Fatalf("future entry must be inactive with 0%%, got %#v", w)
	}
}

func TestPartition_TotalAndDisjoint(t *testing.T) {
	var entries []doselog.Entry
	for i := 0; i < 20; i++ {
		at := t0.Add(time.Duration(i-10) * 37 * time.Minute)
		entries = append(entries, entry(fmt.Sprintf("e%02d", i), "S", at, (i%4)*90))
	}

	v := Partition(entries, t0)
	if len(v.Active)+len(v.History) != len(entries) {
		t.Fatalf("partition lost entries: %d + %d != %d", len(v.Active), len(v.History), len(entries))
	}

	seen := map[string]bool{}
	for _, w := range append(append([]Window{}, v.Active...), v.History...) {
		if seen[w.Entry.ID] {
			t.Fatalf("entry %s appears twice", w.Entry.ID)
		}
		seen[w.Entry.ID] = true
	}
	for _, w := range v.Active {
		if !w.Active {
			t.Fatalf("inactive entry %s in active list", w.Entry.ID)
		}
	}
	for _, w := range v.History {
		if w.Active {
			t.Fatalf("active entry %s in history", w.Entry.ID)
		}
	}
}

func TestPartition_SortsMostRecentFirst(t *testing.T) {
	entries := []doselog.Entry{
		entry("a", "A", t0.Add(-3*time.Hour), 60),
		entry("c", "C", t0.Add(-time.Hour), 60),
		entry("b", "B", t0.Add(-time.Hour), 60),
		entry("d", "D", t0.Add(-10*time.Minute), 60),
		entry("e", "E", t0.Add(-20*time.Minute), 60),
	}

	v := Partition(entries, t0)
	if len(v.Active) != 2 || v.Active[0].Entry.ID != "d" || v.Active[1].Entry.ID != "e" {
		t.Fatalf("unexpected active order: %+v", ids(v.Active))
	}
	got := ids(v.History)
	want := []string{"b", "c", "a"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("history order %v, want %v", got, want)
	}
}

func TestActiveSubstanceNames_Dedupes(t *testing.T) {
	v := Partition([]doselog.Entry{
		entry("1", "MDMA", t0.Add(-time.Minute), 240),
		entry("2", "mdma", t0.Add(-2*time.Minute), 240),
		entry("3", "Caffeine", t0.Add(-3*time.Minute), 240),
	}, t0)

	names := ActiveSubstanceNames(v)
	if len(names) != 2 || names[0] != "MDMA" || names[1] != "Caffeine" {
		t.Fatalf("unexpected names: %v", names)
	}
}

type staticSource []doselog.Entry

func (s staticSource) List(context.Context) []doselog.Entry { return append([]doselog.Entry(nil), s...) }

func TestTicker_TickIsIdempotent(t *testing.T) {
	src := staticSource{entry("1", "Caffeine", t0, 240)}
	var views []View
	tk := NewTicker(src, 0, func(v View) { views = append(views, v) }).
		WithClock(func() time.Time { return t0.Add(30 * time.Minute) })

	if tk.Interval != DefaultTickInterval {
		t.Fatalf("expected default interval, got %v", tk.Interval)
	}

	a := tk.Tick(context.Background())
	b := tk.Tick(context.Background())
	if len(views) != 2 || len(a.Active) != 1 || a.Active[0].ProgressPercent != b.Active[0].ProgressPercent {
		t.Fatalf("ticks must produce identical views")
	}
}

func TestTicker_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan View, 16)
	tk := NewTicker(staticSource{}, 5*time.Millisecond, func(v View) {
		select {
		case ticks <- v:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		tk.Run(ctx)
		close(done)
	}()

	<-ticks // tick inmediato
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestTimelineHandler(t *testing.T) {
	src := staticSource{
		entry("1", "Caffeine", t0, 240),
		entry("2", "Old", t0.Add(-24*time.Hour), 60),
	}
	r := chi.NewRouter()
	RegisterRoutes(r, src, func() time.Time { return t0.Add(time.Hour) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/timeline", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body timelineResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Active) != 1 || body.Active[0].ProgressPercent != 25 || body.Active[0].Started != "1 hour ago" {
		t.Fatalf("unexpected active: %+v", body.Active)
	}
	if len(body.History) != 1 || body.History[0].Entry.ID != "2" {
		t.Fatalf("unexpected history: %+v", body.History)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/timeline?at=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad at, got %d", rr.Code)
	}
}

func ids(ws []Window) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Entry.ID)
	}
	return out
}
