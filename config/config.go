package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// Config es la configuración completa del motor.
type Config struct {
	Monitor   MonitorConfig   `yaml:"monitor"`
	Providers ProvidersConfig `yaml:"providers"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Storage   StorageConfig   `yaml:"storage"`
	Stream    StreamConfig    `yaml:"stream"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Log       LogConfig       `yaml:"log"`
}

// MonitorConfig controla el loop de polling y el ciclo de vida.
type MonitorConfig struct {
	Sport                    string  `yaml:"sport"` // ncaab | nba
	PollIntervalSeconds      int     `yaml:"poll_interval_seconds"`
	InactivityTimeoutSeconds int     `yaml:"inactivity_timeout_seconds"` // 0 usa el default; -1 desactiva
	UnderThresholdPPM        float64 `yaml:"under_threshold_ppm"`
	OverThresholdPPM         float64 `yaml:"over_threshold_ppm"`
	DiffThresholdPPM         float64 `yaml:"diff_threshold_ppm"`
	EarlyBlendMinutes        float64 `yaml:"early_blend_minutes"`
	MomentumShortWindowMins  int     `yaml:"momentum_short_window_mins"`
	MomentumLongWindowMins   int     `yaml:"momentum_long_window_mins"`
	MomentumFlatThresholdPPM float64 `yaml:"momentum_flat_threshold_ppm"`
}

// ProvidersConfig contiene los endpoints y credenciales de los proveedores.
type ProvidersConfig struct {
	ScoreboardBase string `yaml:"scoreboard_base"` // vacío = API pública por defecto
	OddsBase       string `yaml:"odds_base"`
	OddsAPIKey     string `yaml:"odds_api_key"` // normalmente vía ODDS_API_KEY
	StatsURL       string `yaml:"stats_url"`
	AliasesPath    string `yaml:"aliases_path"` // YAML de alias sembrados
}

// ScoringConfig permite reajustar el scorer de confianza sin tocar código:
// pesos y tabla de tiers salen del YAML para poder recalibrarlos con el
// histórico. Los campos a cero y la lista de tiers vacía usan los valores
// de producción.
type ScoringConfig struct {
	Weights WeightsConfig `yaml:"weights"`
	Tiers   []TierConfig  `yaml:"tiers"`
}

// WeightsConfig espeja domain.ScoringWeights campo a campo. Un campo a cero
// cae al peso de producción (las penalizaciones se escriben en negativo).
type WeightsConfig struct {
	SlowPaceThreshold float64 `yaml:"slow_pace_threshold"`
	FastPaceThreshold float64 `yaml:"fast_pace_threshold"`
	SlowPaceBonus     float64 `yaml:"slow_pace_bonus"`
	MediumPaceBonus   float64 `yaml:"medium_pace_bonus"`
	FastPacePenalty   float64 `yaml:"fast_pace_penalty"`

	LowThreeRateThreshold float64 `yaml:"low_three_rate_threshold"`
	HighThreePctThreshold float64 `yaml:"high_three_pct_threshold"`
	LowThreeRateBonus     float64 `yaml:"low_three_rate_bonus"`
	HighThreePctPenalty   float64 `yaml:"high_three_pct_penalty"`

	LowFTRateThreshold  float64 `yaml:"low_ft_rate_threshold"`
	HighFTRateThreshold float64 `yaml:"high_ft_rate_threshold"`
	LowFTRateBonus      float64 `yaml:"low_ft_rate_bonus"`
	HighFTRatePenalty   float64 `yaml:"high_ft_rate_penalty"`

	HighTORateThreshold float64 `yaml:"high_to_rate_threshold"`
	HighTORateBonus     float64 `yaml:"high_to_rate_bonus"`

	StrongDefenseThreshold float64 `yaml:"strong_defense_threshold"`
	StrongDefenseBonus     float64 `yaml:"strong_defense_bonus"`

	BothSlowBonus          float64 `yaml:"both_slow_bonus"`
	BothStrongDefenseBonus float64 `yaml:"both_strong_defense_bonus"`
	PaceMismatchPenalty    float64 `yaml:"pace_mismatch_penalty"`
}

// TierConfig mapea un rango de confianza [min, max] a un tamaño de apuesta.
type TierConfig struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Units float64 `yaml:"units"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// StreamConfig controla el servidor HTTP del stream y /metrics.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelegramConfig controla las alertas por Telegram.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"` // normalmente vía TELEGRAM_TOKEN
	ChatID  int64  `yaml:"chat_id"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults + entorno
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalSeconds) * time.Second
}

// InactivityTimeout devuelve el timeout del kill switch.
func (c *Config) InactivityTimeout() time.Duration {
	return time.Duration(c.Monitor.InactivityTimeoutSeconds) * time.Second
}

// ScoringWeights materializa los pesos del scorer: parte de los pesos de
// producción y aplica los campos no-cero del YAML encima.
func (c *Config) ScoringWeights() domain.ScoringWeights {
	w := domain.DefaultScoringWeights()
	o := c.Scoring.Weights

	override(&w.SlowPaceThreshold, o.SlowPaceThreshold)
	override(&w.FastPaceThreshold, o.FastPaceThreshold)
	override(&w.SlowPaceBonus, o.SlowPaceBonus)
	override(&w.MediumPaceBonus, o.MediumPaceBonus)
	override(&w.FastPacePenalty, o.FastPacePenalty)
	override(&w.LowThreeRateThreshold, o.LowThreeRateThreshold)
	override(&w.HighThreePctThreshold, o.HighThreePctThreshold)
	override(&w.LowThreeRateBonus, o.LowThreeRateBonus)
	override(&w.HighThreePctPenalty, o.HighThreePctPenalty)
	override(&w.LowFTRateThreshold, o.LowFTRateThreshold)
	override(&w.HighFTRateThreshold, o.HighFTRateThreshold)
	override(&w.LowFTRateBonus, o.LowFTRateBonus)
	override(&w.HighFTRatePenalty, o.HighFTRatePenalty)
	override(&w.HighTORateThreshold, o.HighTORateThreshold)
	override(&w.HighTORateBonus, o.HighTORateBonus)
	override(&w.StrongDefenseThreshold, o.StrongDefenseThreshold)
	override(&w.StrongDefenseBonus, o.StrongDefenseBonus)
	override(&w.BothSlowBonus, o.BothSlowBonus)
	override(&w.BothStrongDefenseBonus, o.BothStrongDefenseBonus)
	override(&w.PaceMismatchPenalty, o.PaceMismatchPenalty)

	return w
}

// UnitTiers materializa la tabla de tiers, o la de producción si el YAML
// no define ninguna.
func (c *Config) UnitTiers() []domain.UnitTier {
	if len(c.Scoring.Tiers) == 0 {
		return domain.DefaultUnitTiers()
	}
	tiers := make([]domain.UnitTier, len(c.Scoring.Tiers))
	for i, t := range c.Scoring.Tiers {
		tiers[i] = domain.UnitTier{Min: t.Min, Max: t.Max, Units: t.Units}
	}
	return tiers
}

func override(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.Providers.OddsAPIKey = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Monitor.Sport == "" {
		cfg.Monitor.Sport = "ncaab"
	}
	if cfg.Monitor.PollIntervalSeconds <= 0 {
		cfg.Monitor.PollIntervalSeconds = 40
	}
	if cfg.Monitor.InactivityTimeoutSeconds < 0 {
		cfg.Monitor.InactivityTimeoutSeconds = 0
	} else if cfg.Monitor.InactivityTimeoutSeconds == 0 {
		cfg.Monitor.InactivityTimeoutSeconds = 300
	}
	if cfg.Monitor.UnderThresholdPPM <= 0 {
		cfg.Monitor.UnderThresholdPPM = 4.5
	}
	if cfg.Monitor.OverThresholdPPM <= 0 {
		cfg.Monitor.OverThresholdPPM = 1.5
	}
	if cfg.Monitor.DiffThresholdPPM <= 0 {
		cfg.Monitor.DiffThresholdPPM = 1.25
	}
	if cfg.Monitor.EarlyBlendMinutes <= 0 {
		cfg.Monitor.EarlyBlendMinutes = 5
	}
	if cfg.Monitor.MomentumShortWindowMins <= 0 {
		cfg.Monitor.MomentumShortWindowMins = 2
	}
	if cfg.Monitor.MomentumLongWindowMins <= 0 {
		cfg.Monitor.MomentumLongWindowMins = 6
	}
	if cfg.Monitor.MomentumFlatThresholdPPM <= 0 {
		cfg.Monitor.MomentumFlatThresholdPPM = 0.3
	}
	if cfg.Providers.AliasesPath == "" {
		cfg.Providers.AliasesPath = "data/team_aliases.yaml"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "courtpulse.db"
	}
	if cfg.Stream.Addr == "" {
		cfg.Stream.Addr = ":8090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
