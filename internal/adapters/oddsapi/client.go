package oddsapi

// Cliente de The Odds API: solo el mercado de totales (over/under).
// La cuota mensual es pequeña, así que pedimos una única región y un único
// mercado por llamada y registramos los headers de cuota en debug.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/ports"
)

const (
	defaultBase = "https://api.the-odds-api.com/v4"

	requestsPerSec = 1

	maxRetries    = 2
	baseRetryWait = time.Second
)

// Client consulta las líneas de totales de The Odds API.
type Client struct {
	http     *http.Client
	base     string
	apiKey   string
	sportKey string
	limiter  *rate.Limiter
}

// NewClient crea un Client para el deporte dado. Si base está vacío usa
// el URL de producción.
func NewClient(base, apiKey string, sport domain.Sport) *Client {
	if base == "" {
		base = defaultBase
	}
	sportKey := "basketball_ncaab"
	if sport == domain.SportNBA {
		sportKey = "basketball_nba"
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		base:     base,
		apiKey:   apiKey,
		sportKey: sportKey,
		limiter:  rate.NewLimiter(requestsPerSec, 1),
	}
}

// FetchTotals devuelve la línea de totales de cada evento con mercado
// abierto. Eventos sin mercado de totales se omiten en silencio.
func (c *Client) FetchTotals(ctx context.Context) ([]ports.LineEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", "totals")
	q.Set("oddsFormat", "american")
	q.Set("dateFormat", "iso")

	u := fmt.Sprintf("%s/sports/%s/odds/?%s", c.base, c.sportKey, q.Encode())

	var games []oddsGame
	if err := c.get(ctx, u, &games); err != nil {
		return nil, fmt.Errorf("oddsapi.FetchTotals: %w", err)
	}

	events := make([]ports.LineEvent, 0, len(games))
	for _, g := range games {
		total, ok := g.totalsPoint()
		if !ok {
			continue
		}
		events = append(events, ports.LineEvent{
			HomeTeam: g.HomeTeam,
			AwayTeam: g.AwayTeam,
			Line:     domain.MarketLine{Total: total},
		})
	}
	return events, nil
}

// get hace un GET con rate limiting y retries, registrando la cuota restante.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if used := resp.Header.Get("x-requests-used"); used != "" {
			slog.Debug("odds api quota",
				"used", used,
				"remaining", resp.Header.Get("x-requests-remaining"),
			)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
