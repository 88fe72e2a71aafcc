package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dose-timeline/internal/domain/doselog"
	"dose-timeline/internal/domain/substances"

	"github.com/go-chi/chi/v5"
)

func ix(name string, s substances.Severity) substances.Interaction {
	return substances.Interaction{Name: name, Status: s}
}

func TestDetect_CaseInsensitiveDangerous(t *testing.T) {
	cand := Candidate{Name: "MDMA", Interactions: []substances.Interaction{ix("ssri", substances.SeverityDangerous)}}
	active := []ActiveSubstance{{Name: "SSRI"}}

	f, ok := Detect(cand, active, DefaultPolicy())
	if !ok {
		t.Fatalf("expected a finding")
	}
	if f.With != "SSRI" || f.Severity != substances.SeverityDangerous {
		t.Fatalf("unexpected finding: %#v", f)
	}
}

func TestDetect_HighestRankFirstInTableWins(t *testing.T) {
	cand := Candidate{Name: "X", Interactions: []substances.Interaction{
		ix("A", substances.SeverityCaution),
		ix("B", substances.SeverityUnsafe),
		ix("C", substances.SeverityUnsafe),
		ix("D", substances.SeverityDangerous),
		ix("E", substances.SeverityDangerous),
	}}
	active := []ActiveSubstance{{Name: "E"}, {Name: "D"}, {Name: "C"}, {Name: "B"}, {Name: "A"}}

	f, ok := Detect(cand, active, DefaultPolicy())
	if !ok || f.With != "D" {
		t.Fatalf("expected first Dangerous in table order (D), got %#v", f)
	}

	f, ok = Detect(cand, active[2:], DefaultPolicy())
	if !ok || f.With != "B" || f.Severity != substances.SeverityUnsafe {
		t.Fatalf("expected first Unsafe in table order (B), got %#v", f)
	}
}

func TestDetect_BelowThresholdNotReported(t *testing.T) {
	cand := Candidate{Name: "X", Interactions: []substances.Interaction{
		ix("A", substances.SeverityCaution),
		ix("B", substances.SeveritySafe),
		ix("C", substances.SeverityUnknown),
	}}
	active := []ActiveSubstance{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	if f, ok := Detect(cand, active, DefaultPolicy()); ok {
		t.Fatalf("caution must not be reported with default policy, got %#v", f)
	}

	f, ok := Detect(cand, active, Policy{Threshold: substances.SeverityCaution})
	if !ok || f.With != "A" {
		t.Fatalf("expected caution finding with lowered threshold, got %#v", f)
	}
}

func TestDetect_NoMatchOrEmptyTable(t *testing.T) {
	if _, ok := Detect(Candidate{Name: "X"}, []ActiveSubstance{{Name: "A"}}, DefaultPolicy()); ok {
		t.Fatalf("empty table must yield nothing")
	}
	cand := Candidate{Name: "X", Interactions: []substances.Interaction{ix("Z", substances.SeverityDangerous)}}
	if _, ok := Detect(cand, []ActiveSubstance{{Name: "A"}}, DefaultPolicy()); ok {
		t.Fatalf("no active match must yield nothing")
	}
	if _, ok := Detect(cand, nil, DefaultPolicy()); ok {
		t.Fatalf("no active substances must yield nothing")
	}
}

func TestDetect_AsymmetricUnlessBidirectional(t *testing.T) {
	cand := Candidate{Name: "Tramadol"}
	active := []ActiveSubstance{{Name: "MDMA", Interactions: []substances.Interaction{ix("tramadol", substances.SeverityDangerous)}}}

	if _, ok := Detect(cand, active, DefaultPolicy()); ok {
		t.Fatalf("default lookup only consults the candidate table")
	}

	f, ok := Detect(cand, active, Policy{Threshold: substances.SeverityUnsafe, Bidirectional: true})
	if !ok || f.With != "MDMA" || f.Source != "active" {
		t.Fatalf("expected bidirectional finding, got %#v", f)
	}
}

func TestPolicy_SafeThresholdFallsBackToUnsafe(t *testing.T) {
	cand := Candidate{Name: "X", Interactions: []substances.Interaction{ix("A", substances.SeveritySafe)}}
	if _, ok := Detect(cand, []ActiveSubstance{{Name: "A"}}, Policy{Threshold: substances.SeveritySafe}); ok {
		t.Fatalf("safe interactions must never be reported")
	}
}

type fakeCatalog struct {
	items map[string]substances.Substance
	err   error
}

func (f fakeCatalog) GetDetail(_ context.Context, name string) (substances.Substance, error) {
	if f.err != nil {
		return substances.Substance{}, f.err
	}
	s, ok := f.items[name]
	if !ok {
		return substances.Substance{}, errors.New("not found")
	}
	return s, nil
}

type fakeEntries []doselog.Entry

func (f fakeEntries) List(context.Context) []doselog.Entry { return append([]doselog.Entry(nil), f...) }

var now = time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

func logged(id, name string, ago time.Duration, snap ...substances.Interaction) doselog.Entry {
	e := doselog.Entry{
		ID: id, SubstanceName: name, Amount: 1, Unit: "mg", Route: "oral",
		Timestamp:                now.Add(-ago).UnixMilli(),
		EstimatedDurationMinutes: 240,
	}
	if snap != nil {
		e.SubstanceSnapshot = &doselog.Snapshot{InteractionsFlat: snap}
	}
	return e
}

func newChecker(cat DetailLookup, entries EntrySource) *Checker {
	c := NewChecker(cat, entries, DefaultPolicy(), nil)
	c.now = func() time.Time { return now }
	return c
}

func TestChecker_UsesLiveCatalog(t *testing.T) {
	cat := fakeCatalog{items: map[string]substances.Substance{
		"MDMA": {Name: "MDMA", InteractionsFlat: []substances.Interaction{ix("ssris", substances.SeverityDangerous)}},
	}}
	entries := fakeEntries{logged("1", "SSRIs", time.Hour)}

	var warned []Finding
	c := newChecker(cat, entries)
	c.OnWarning = func(f Finding) { warned = append(warned, f) }

	f, ok := c.Check(context.Background(), "MDMA")
	if !ok || f.With != "SSRIs" || f.Severity != substances.SeverityDangerous {
		t.Fatalf("unexpected result: %#v %v", f, ok)
	}
	if len(warned) != 1 {
		t.Fatalf("expected OnWarning once, got %d", len(warned))
	}
}

func TestChecker_FallsBackToLatestSnapshot(t *testing.T) {
	cat := fakeCatalog{err: errors.New("catalog down")}
	entries := fakeEntries{
		logged("old", "MDMA", 72*time.Hour, ix("alcohol", substances.SeverityCaution)),
		logged("new", "MDMA", 48*time.Hour, ix("alcohol", substances.SeverityUnsafe)),
		logged("a", "Alcohol", 30*time.Minute),
	}

	f, ok := newChecker(cat, entries).Check(context.Background(), "mdma")
	if !ok || f.With != "Alcohol" || f.Severity != substances.SeverityUnsafe {
		t.Fatalf("expected snapshot-based Unsafe finding, got %#v %v", f, ok)
	}
}

func TestChecker_IgnoresInactiveEntries(t *testing.T) {
	cat := fakeCatalog{items: map[string]substances.Substance{
		"MDMA": {Name: "MDMA", InteractionsFlat: []substances.Interaction{ix("SSRIs", substances.SeverityDangerous)}},
	}}
	entries := fakeEntries{logged("1", "SSRIs", 5*time.Hour)} // 240 min => ya terminó

	if f, ok := newChecker(cat, entries).Check(context.Background(), "MDMA"); ok {
		t.Fatalf("expired dose must not trigger a warning: %#v", f)
	}
}

func TestCheckHandler(t *testing.T) {
	cat := fakeCatalog{items: map[string]substances.Substance{
		"MDMA": {Name: "MDMA", InteractionsFlat: []substances.Interaction{ix("Tramadol", substances.SeverityDangerous)}},
	}}
	r := chi.NewRouter()
	RegisterRoutes(r, newChecker(cat, fakeEntries{logged("1", "Tramadol", time.Minute)}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/interactions/check?substance=MDMA", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body checkResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Warning == nil || body.Warning.Severity != substances.SeverityDangerous {
		t.Fatalf("expected dangerous warning, got %#v", body.Warning)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/interactions/check?substance=Caffeine", nil))
	if rr.Body.String() != "{\"substance\":\"Caffeine\",\"warning\":null}\n" {
		t.Fatalf("expected null warning, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/interactions/check", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without substance, got %d", rr.Code)
	}
}
