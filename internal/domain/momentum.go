package domain

import (
	"sync"
	"time"
)

// MomentumDirection es la flecha de tendencia del ritmo de anotación.
type MomentumDirection string

const (
	MomentumUp   MomentumDirection = "up"
	MomentumDown MomentumDirection = "down"
	MomentumFlat MomentumDirection = "flat"
)

// MomentumConfig controla las ventanas y el umbral de la flecha.
type MomentumConfig struct {
	ShortWindow   time.Duration // media corta
	LongWindow    time.Duration // media larga; también la edad máxima de muestra
	FlatThreshold float64       // |delta| por debajo → flat
}

// DefaultMomentumConfig devuelve las ventanas de producción.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		ShortWindow:   2 * time.Minute,
		LongWindow:    6 * time.Minute,
		FlatThreshold: 0.3,
	}
}

// Momentum es la lectura de tendencia de un partido en un tick.
type Momentum struct {
	ShortAvg  float64
	LongAvg   float64
	Delta     float64
	Direction MomentumDirection
	Samples   int
}

type ppmSample struct {
	at  time.Time
	ppm float64
}

// MomentumTracker mantiene un buffer de muestras de PPM por partido y
// calcula la tendencia corto-vs-largo. Los buffers se descartan con Drop
// cuando el partido termina. Seguro para uso concurrente.
type MomentumTracker struct {
	cfg     MomentumConfig
	mu      sync.Mutex
	buffers map[string][]ppmSample
}

// NewMomentumTracker crea un tracker vacío.
func NewMomentumTracker(cfg MomentumConfig) *MomentumTracker {
	if cfg.ShortWindow <= 0 {
		cfg.ShortWindow = 2 * time.Minute
	}
	if cfg.LongWindow <= cfg.ShortWindow {
		cfg.LongWindow = 3 * cfg.ShortWindow
	}
	return &MomentumTracker{
		cfg:     cfg,
		buffers: make(map[string][]ppmSample),
	}
}

// Record añade una muestra (timestamp, current PPM) al buffer del partido
// y devuelve la tendencia actualizada. Las muestras más viejas que la
// ventana larga se filtran en cada lectura; el orden de llegada no importa.
func (t *MomentumTracker) Record(gameID string, at time.Time, ppm float64) Momentum {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.buffers[gameID][:0]
	cutoff := at.Add(-t.cfg.LongWindow)
	for _, s := range t.buffers[gameID] {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	kept = append(kept, ppmSample{at: at, ppm: ppm})
	t.buffers[gameID] = kept

	return t.assess(kept, at)
}

// Drop descarta el buffer de un partido terminado.
func (t *MomentumTracker) Drop(gameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.buffers, gameID)
}

// Tracked devuelve cuántos partidos tienen buffer activo.
func (t *MomentumTracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffers)
}

// assess calcula las medias corta y larga y asigna la flecha.
func (t *MomentumTracker) assess(samples []ppmSample, now time.Time) Momentum {
	shortCutoff := now.Add(-t.cfg.ShortWindow)

	var shortSum, longSum float64
	var shortN, longN int
	for _, s := range samples {
		longSum += s.ppm
		longN++
		if !s.at.Before(shortCutoff) {
			shortSum += s.ppm
			shortN++
		}
	}

	m := Momentum{Direction: MomentumFlat, Samples: longN}
	if longN == 0 || shortN == 0 {
		return m
	}

	m.ShortAvg = shortSum / float64(shortN)
	m.LongAvg = longSum / float64(longN)
	m.Delta = m.ShortAvg - m.LongAvg

	switch {
	case m.Delta >= t.cfg.FlatThreshold:
		m.Direction = MomentumUp
	case m.Delta <= -t.cfg.FlatThreshold:
		m.Direction = MomentumDown
	}
	return m
}
