package stats

// Proveedor de métricas de referencia por equipo: ratings de temporada
// servidos como JSON por un endpoint externo, cacheados en memoria con TTL
// diario. Dato de solo lectura para el motor; un equipo ausente no es error.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nmoreno/courtpulse/internal/domain"
)

const defaultTTL = 24 * time.Hour

type ratingRow struct {
	Team          string  `json:"team"`
	Pace          float64 `json:"pace"`
	OffEfficiency float64 `json:"off_efficiency"`
	DefEfficiency float64 `json:"def_efficiency"`
	ThreePRate    float64 `json:"three_p_rate"`
	ThreePPct     float64 `json:"three_p_pct"`
	FTRate        float64 `json:"ft_rate"`
	TORate        float64 `json:"to_rate"`
}

// Provider sirve métricas de equipo desde un endpoint de ratings JSON.
type Provider struct {
	http    *http.Client
	url     string
	ttl     time.Duration
	limiter *rate.Limiter

	mu        sync.RWMutex
	byName    map[string]*domain.TeamMetrics // nombre en minúsculas → métricas
	fetchedAt time.Time
}

// NewProvider crea un Provider contra el endpoint dado. ttl <= 0 usa el
// refresco diario por defecto.
func NewProvider(url string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Provider{
		http:    &http.Client{Timeout: 30 * time.Second},
		url:     url,
		ttl:     ttl,
		limiter: rate.NewLimiter(1, 1),
		byName:  make(map[string]*domain.TeamMetrics),
	}
}

// TeamMetrics devuelve las métricas del equipo o (nil, false) si no está en
// el dataset. Refresca la caché si expiró; si el refresco falla se sirve el
// dataset anterior (dato de referencia, mejor viejo que ninguno).
func (p *Provider) TeamMetrics(ctx context.Context, canonicalName string) (*domain.TeamMetrics, bool) {
	if p.stale() {
		if err := p.Refresh(ctx); err != nil {
			slog.Warn("stats refresh failed, serving stale data", "err", err)
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(canonicalName))
	if m, ok := p.byName[key]; ok {
		return m, true
	}

	// Match flexible: el nombre canónico contenido en el del dataset o al revés.
	for name, m := range p.byName {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return m, true
		}
	}
	return nil, false
}

// Refresh recarga el dataset completo desde el endpoint.
func (p *Provider) Refresh(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("stats.Refresh: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("stats.Refresh: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("stats.Refresh: fetch ratings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("stats.Refresh: status %d: %s", resp.StatusCode, string(body))
	}

	var rows []ratingRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return fmt.Errorf("stats.Refresh: decode ratings: %w", err)
	}

	byName := make(map[string]*domain.TeamMetrics, len(rows))
	for _, r := range rows {
		if r.Team == "" {
			continue
		}
		byName[strings.ToLower(r.Team)] = &domain.TeamMetrics{
			Name:          r.Team,
			Pace:          r.Pace,
			OffEfficiency: r.OffEfficiency,
			DefEfficiency: r.DefEfficiency,
			ThreePRate:    r.ThreePRate,
			ThreePPct:     r.ThreePPct,
			FTRate:        r.FTRate,
			TORate:        r.TORate,
		}
	}

	p.mu.Lock()
	p.byName = byName
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	slog.Info("team ratings refreshed", "teams", len(byName))
	return nil
}

// TeamNames devuelve los nombres del dataset cargado, para sembrar la tabla
// canónica del resolver de identidades.
func (p *Provider) TeamNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.byName))
	for _, m := range p.byName {
		names = append(names, m.Name)
	}
	return names
}

func (p *Provider) stale() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.fetchedAt) > p.ttl
}
