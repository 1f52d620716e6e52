package espn

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
)

const (
	ncaabBase = "https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"
	nbaBase   = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"

	// API pública sin cuota documentada; nos autolimitamos igualmente.
	requestsPerSec = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el cliente del API de ESPN: marcadores en vivo y líneas de
// apertura/cierre del resumen de partido. Con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client para el deporte dado. Si base está vacío usa el
// URL de producción de ESPN para ese deporte.
func NewClient(base string, sport domain.Sport) *Client {
	if base == "" {
		if sport == domain.SportNBA {
			base = nbaBase
		} else {
			base = ncaabBase
		}
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(requestsPerSec, 2),
	}
}

// FetchScoreboard devuelve los snapshots del scoreboard del día. Un evento
// malformado se salta con warning; el resto del tick sigue.
func (c *Client) FetchScoreboard(ctx context.Context) ([]domain.GameSnapshot, error) {
	var resp scoreboardResponse
	if err := c.get(ctx, c.base+"/scoreboard", &resp); err != nil {
		return nil, fmt.Errorf("espn.FetchScoreboard: %w", err)
	}

	snaps := make([]domain.GameSnapshot, 0, len(resp.Events))
	for _, ev := range resp.Events {
		snap, err := toSnapshot(ev)
		if err != nil {
			slog.Warn("skipping malformed scoreboard event", "event_id", ev.ID, "err", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// FetchOpeningTotal devuelve la línea de apertura del partido desde el
// pickcenter del resumen, o (0, false) si no hay línea publicada.
func (c *Client) FetchOpeningTotal(ctx context.Context, gameID string) (float64, bool, error) {
	var resp summaryResponse
	u := c.base + "/summary?event=" + url.QueryEscape(gameID)
	if err := c.get(ctx, u, &resp); err != nil {
		return 0, false, fmt.Errorf("espn.FetchOpeningTotal: game %s: %w", gameID, err)
	}

	if len(resp.Pickcenter) == 0 {
		return 0, false, nil
	}
	total, ok := parseTotalLine(resp.Pickcenter[0].Total.Over.Open.Line)
	return total, ok, nil
}

// FetchClosingTotal devuelve la línea de cierre del pickcenter, si existe.
func (c *Client) FetchClosingTotal(ctx context.Context, gameID string) (float64, bool, error) {
	var resp summaryResponse
	u := c.base + "/summary?event=" + url.QueryEscape(gameID)
	if err := c.get(ctx, u, &resp); err != nil {
		return 0, false, fmt.Errorf("espn.FetchClosingTotal: game %s: %w", gameID, err)
	}

	if len(resp.Pickcenter) == 0 {
		return 0, false, nil
	}
	total, ok := parseTotalLine(resp.Pickcenter[0].Total.Over.Close.Line)
	return total, ok, nil
}

// get hace un GET con rate limiting y retries con backoff exponencial.
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

// sleep espera con backoff exponencial respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
