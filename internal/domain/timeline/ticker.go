package timeline

import (
	"context"
	"time"

	"dose-timeline/internal/domain/doselog"
)

const DefaultTickInterval = time.Minute

// Source es lo mínimo que necesita el ticker del store de dosis.
type Source interface {
	List(ctx context.Context) []doselog.Entry
}

// Ticker recalcula la vista cada Interval y se la entrega a OnTick.
// Los ticks son idempotentes: perder o juntar ticks no cambia el resultado.
type Ticker struct {
	Source   Source
	Interval time.Duration
	OnTick   func(View)

	now func() time.Time
}

func NewTicker(src Source, interval time.Duration, onTick func(View)) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{
		Source:   src,
		Interval: interval,
		OnTick:   onTick,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (t *Ticker) WithClock(now func() time.Time) *Ticker {
	t.now = now
	return t
}

// Tick recalcula una vez y entrega el resultado.
func (t *Ticker) Tick(ctx context.Context) View {
	v := Partition(t.Source.List(ctx), t.now())
	if t.OnTick != nil {
		t.OnTick(v)
	}
	return v
}

// Run hace un tick inmediato y luego uno por intervalo hasta que ctx se cancela.
func (t *Ticker) Run(ctx context.Context) {
	t.Tick(ctx)

	tk := time.NewTicker(t.Interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Tick(ctx)
		}
	}
}
