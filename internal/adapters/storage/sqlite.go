package storage

// sqlite.go — registro persistente del motor.
//
// Tres tablas:
//   - `observations`: log append-only, una fila por (partido, tick). Flush
//     inmediato: cada fila se inserta en cuanto existe.
//   - `results`: registro terminal, exactamente una fila por (game_id, date).
//     INSERT OR IGNORE sobre el índice único → la reconciliación es
//     idempotente sin lógica extra.
//   - `team_aliases`: alias aprendidos por el resolver de identidades.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nmoreno/courtpulse/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Log de observaciones: una fila por partido y tick
CREATE TABLE IF NOT EXISTS observations (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp            DATETIME NOT NULL,
    game_id              TEXT     NOT NULL,
    home_team            TEXT     NOT NULL,
    away_team            TEXT     NOT NULL,
    period               INTEGER  NOT NULL DEFAULT 0,
    minutes_remaining    INTEGER  NOT NULL DEFAULT 0,
    seconds_remaining    INTEGER  NOT NULL DEFAULT 0,
    home_score           INTEGER  NOT NULL DEFAULT 0,
    away_score           INTEGER  NOT NULL DEFAULT 0,
    total_points         INTEGER  NOT NULL DEFAULT 0,
    ou_line              REAL,
    ou_open              REAL,
    required_ppm         REAL,
    current_ppm          REAL,
    ppm_difference       REAL,
    projected_final      REAL,
    total_time_remaining REAL     NOT NULL DEFAULT 0,
    bet_type             TEXT     NOT NULL DEFAULT '',
    trigger_flag         INTEGER  NOT NULL DEFAULT 0,
    home_pace            REAL,
    away_pace            REAL,
    home_three_rate      REAL,
    away_three_rate      REAL,
    home_def_eff         REAL,
    away_def_eff         REAL,
    confidence_score     REAL     NOT NULL DEFAULT 0,
    unit_size            REAL     NOT NULL DEFAULT 0,
    notes                TEXT     NOT NULL DEFAULT ''
);

-- Registro terminal: una fila por partido y fecha
CREATE TABLE IF NOT EXISTS results (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id           TEXT NOT NULL,
    date              TEXT NOT NULL,
    home_team         TEXT NOT NULL,
    away_team         TEXT NOT NULL,
    final_home_score  INTEGER NOT NULL DEFAULT 0,
    final_away_score  INTEGER NOT NULL DEFAULT 0,
    final_total       INTEGER NOT NULL DEFAULT 0,
    ou_line           REAL,
    ou_open           REAL,
    ou_result         TEXT    NOT NULL DEFAULT '',
    went_to_ot        INTEGER NOT NULL DEFAULT 0,
    our_trigger       INTEGER NOT NULL DEFAULT 0,
    trigger_side      TEXT    NOT NULL DEFAULT '',
    max_confidence    REAL    NOT NULL DEFAULT 0,
    max_units         REAL    NOT NULL DEFAULT 0,
    trigger_timestamp DATETIME,
    outcome           TEXT    NOT NULL DEFAULT '',
    unit_profit       REAL    NOT NULL DEFAULT 0,
    notes             TEXT    NOT NULL DEFAULT '',
    UNIQUE(game_id, date)
);

-- Alias aprendidos: nombre externo → canónico
CREATE TABLE IF NOT EXISTS team_aliases (
    canonical TEXT NOT NULL,
    alias     TEXT NOT NULL,
    learned_at DATETIME NOT NULL,
    UNIQUE(canonical, alias)
);

CREATE INDEX IF NOT EXISTS idx_obs_game    ON observations(game_id);
CREATE INDEX IF NOT EXISTS idx_obs_at      ON observations(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_obs_trigger ON observations(trigger_flag);
CREATE INDEX IF NOT EXISTS idx_res_date    ON results(date DESC);
`

// SQLiteStore implementa ports.ObservationStore, ports.ResultStore y
// ports.AliasStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AppendObservation inserta una fila del log. Sin caché ni batching: el log
// es el registro primario y cada tick debe quedar en disco.
func (s *SQLiteStore) AppendObservation(ctx context.Context, obs domain.GameObservation) error {
	trigger := 0
	if obs.TriggerFlag {
		trigger = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations
			(timestamp, game_id, home_team, away_team, period,
			 minutes_remaining, seconds_remaining, home_score, away_score,
			 total_points, ou_line, ou_open, required_ppm, current_ppm,
			 ppm_difference, projected_final, total_time_remaining, bet_type,
			 trigger_flag, home_pace, away_pace, home_three_rate,
			 away_three_rate, home_def_eff, away_def_eff, confidence_score,
			 unit_size, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		obs.Timestamp.UTC(),
		obs.GameID,
		obs.HomeTeam,
		obs.AwayTeam,
		obs.Period,
		obs.MinutesRemaining,
		obs.SecondsRemaining,
		obs.HomeScore,
		obs.AwayScore,
		obs.TotalPoints,
		obs.OULine,
		obs.OUOpen,
		obs.RequiredPPM,
		obs.CurrentPPM,
		obs.PPMDifference,
		obs.ProjectedFinal,
		obs.TotalTimeRemaining,
		string(obs.BetType),
		trigger,
		obs.HomePace,
		obs.AwayPace,
		obs.HomeThreeRate,
		obs.AwayThreeRate,
		obs.HomeDefEff,
		obs.AwayDefEff,
		obs.ConfidenceScore,
		obs.UnitSize,
		obs.Notes,
	)
	if err != nil {
		return fmt.Errorf("storage.AppendObservation: insert %s: %w", obs.GameID, err)
	}
	return nil
}

// SaveResult inserta el resultado si no existe aún una fila para
// (game_id, date). Devuelve true si insertó.
func (s *SQLiteStore) SaveResult(ctx context.Context, res domain.GameResult) (bool, error) {
	wentOT, trigger := 0, 0
	if res.WentToOT {
		wentOT = 1
	}
	if res.OurTrigger {
		trigger = 1
	}
	var triggerAt *time.Time
	if res.TriggerTimestamp != nil {
		t := res.TriggerTimestamp.UTC()
		triggerAt = &t
	}

	r, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results
			(game_id, date, home_team, away_team, final_home_score,
			 final_away_score, final_total, ou_line, ou_open, ou_result,
			 went_to_ot, our_trigger, trigger_side, max_confidence, max_units,
			 trigger_timestamp, outcome, unit_profit, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.GameID,
		res.Date,
		res.HomeTeam,
		res.AwayTeam,
		res.FinalHomeScore,
		res.FinalAwayScore,
		res.FinalTotal,
		res.OULine,
		res.OUOpen,
		string(res.OUResult),
		wentOT,
		trigger,
		string(res.TriggerSide),
		res.MaxConfidence,
		res.MaxUnits,
		triggerAt,
		string(res.Outcome),
		res.UnitProfit,
		res.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("storage.SaveResult: insert %s: %w", res.GameID, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage.SaveResult: rows affected: %w", err)
	}
	return n > 0, nil
}

// ListResults devuelve todos los resultados, del más antiguo al más reciente.
func (s *SQLiteStore) ListResults(ctx context.Context) ([]domain.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, date, home_team, away_team, final_home_score,
		       final_away_score, final_total, ou_line, ou_open, ou_result,
		       went_to_ot, our_trigger, trigger_side, max_confidence,
		       max_units, trigger_timestamp, outcome, unit_profit, notes
		FROM results
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListResults: query: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var res domain.GameResult
		var ouResult, triggerSide, outcome string
		var wentOT, trigger int
		var triggerAt sql.NullTime

		if err := rows.Scan(
			&res.GameID,
			&res.Date,
			&res.HomeTeam,
			&res.AwayTeam,
			&res.FinalHomeScore,
			&res.FinalAwayScore,
			&res.FinalTotal,
			&res.OULine,
			&res.OUOpen,
			&ouResult,
			&wentOT,
			&trigger,
			&triggerSide,
			&res.MaxConfidence,
			&res.MaxUnits,
			&triggerAt,
			&outcome,
			&res.UnitProfit,
			&res.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.ListResults: scan row: %w", err)
		}

		res.OUResult = domain.Side(ouResult)
		res.TriggerSide = domain.Side(triggerSide)
		res.Outcome = domain.Outcome(outcome)
		res.WentToOT = wentOT == 1
		res.OurTrigger = trigger == 1
		if triggerAt.Valid {
			t := triggerAt.Time
			res.TriggerTimestamp = &t
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// SaveAlias registra un alias aprendido. Repetir el mismo par es un no-op.
func (s *SQLiteStore) SaveAlias(ctx context.Context, canonical, alias string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO team_aliases (canonical, alias, learned_at) VALUES (?, ?, ?)`,
		canonical, alias, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveAlias: insert %q → %q: %w", alias, canonical, err)
	}
	return nil
}

// LoadAliases devuelve todos los alias persistidos, agrupados por canónico.
func (s *SQLiteStore) LoadAliases(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT canonical, alias FROM team_aliases ORDER BY canonical, alias`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadAliases: query: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string][]string)
	for rows.Next() {
		var canonical, alias string
		if err := rows.Scan(&canonical, &alias); err != nil {
			return nil, fmt.Errorf("storage.LoadAliases: scan row: %w", err)
		}
		aliases[canonical] = append(aliases[canonical], alias)
	}

	return aliases, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
