package telemetry

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SummaryDB wraps a SQLite connection for post-run summarization. Multiple
// runs can summarize into the same database for cross-experiment queries.
type SummaryDB struct {
	conn *sqlx.DB
}

// ModelSummary is the one-row-per-run summary.
type ModelSummary struct {
	SimID             string  `db:"sim_id"`
	Seed              int64   `db:"seed"`
	Site              string  `db:"site"`
	Experiment        string  `db:"experiment"`
	Steps             int     `db:"steps"`
	StepsPerYear      int     `db:"steps_per_year"`
	Population        int     `db:"population"`
	Survivors         int     `db:"survivors"`
	DeathsCold        int     `db:"deaths_cold"`
	DeathsHeat        int     `db:"deaths_heat"`
	DeathsStarvation  int     `db:"deaths_starvation"`
	MeanSurvivalTicks float64 `db:"mean_survival_ticks"`
}

// IndividualRow is the per-organism lifetime summary.
type IndividualRow struct {
	SimID           string  `db:"sim_id"`
	OrganismID      uint32  `db:"organism_id"`
	BodyMass        float64 `db:"body_mass"`
	AttackRate      float64 `db:"attack_rate"`
	PreyDensity     float64 `db:"prey_density"`
	BirthStep       int     `db:"birth_step"`
	DeathStep       int     `db:"death_step"` // -1 for survivors
	TicksAlive      int     `db:"ticks_alive"`
	MeanBodyTemp    float64 `db:"mean_body_temperature"`
	PeakReserve     float64 `db:"peak_reserve"`
	PreyConsumed    int     `db:"prey_consumed"`
	CauseOfDeath    string  `db:"cause_of_death"`
}

// OpenSummaryDB opens or creates the summary database at the given path.
func OpenSummaryDB(path string) (*SummaryDB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open summary db: %w", err)
	}

	db := &SummaryDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate summary db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SummaryDB) Close() error {
	return db.conn.Close()
}

func (db *SummaryDB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS model_summary (
		sim_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		site TEXT NOT NULL,
		experiment TEXT NOT NULL,
		steps INTEGER NOT NULL,
		steps_per_year INTEGER NOT NULL,
		population INTEGER NOT NULL,
		survivors INTEGER NOT NULL,
		deaths_cold INTEGER NOT NULL,
		deaths_heat INTEGER NOT NULL,
		deaths_starvation INTEGER NOT NULL,
		mean_survival_ticks REAL NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS individuals (
		sim_id TEXT NOT NULL,
		organism_id INTEGER NOT NULL,
		body_mass REAL NOT NULL,
		attack_rate REAL NOT NULL,
		prey_density REAL NOT NULL,
		birth_step INTEGER NOT NULL,
		death_step INTEGER NOT NULL,
		ticks_alive INTEGER NOT NULL,
		mean_body_temperature REAL NOT NULL,
		peak_reserve REAL NOT NULL,
		prey_consumed INTEGER NOT NULL,
		cause_of_death TEXT NOT NULL,
		PRIMARY KEY (sim_id, organism_id)
	);

	CREATE INDEX IF NOT EXISTS idx_individuals_cause ON individuals(cause_of_death);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// WriteRun stores one run's summary, replacing any previous run with the
// same sim_id.
func (db *SummaryDB) WriteRun(sum ModelSummary, individuals []IndividualRow) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM model_summary WHERE sim_id = ?", sum.SimID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM individuals WHERE sim_id = ?", sum.SimID); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO model_summary
		(sim_id, seed, site, experiment, steps, steps_per_year, population,
		 survivors, deaths_cold, deaths_heat, deaths_starvation, mean_survival_ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.SimID, sum.Seed, sum.Site, sum.Experiment, sum.Steps, sum.StepsPerYear,
		sum.Population, sum.Survivors, sum.DeathsCold, sum.DeathsHeat,
		sum.DeathsStarvation, sum.MeanSurvivalTicks,
	)
	if err != nil {
		return fmt.Errorf("insert model summary: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO individuals
		(sim_id, organism_id, body_mass, attack_rate, prey_density, birth_step,
		 death_step, ticks_alive, mean_body_temperature, peak_reserve,
		 prey_consumed, cause_of_death)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range individuals {
		_, err := stmt.Exec(
			row.SimID, row.OrganismID, row.BodyMass, row.AttackRate, row.PreyDensity,
			row.BirthStep, row.DeathStep, row.TicksAlive, row.MeanBodyTemp,
			row.PeakReserve, row.PreyConsumed, row.CauseOfDeath,
		)
		if err != nil {
			return fmt.Errorf("insert individual %d: %w", row.OrganismID, err)
		}
	}

	return tx.Commit()
}

// RunSummary retrieves the stored summary for a sim ID.
func (db *SummaryDB) RunSummary(simID string) (ModelSummary, error) {
	var sum ModelSummary
	err := db.conn.Get(&sum, `SELECT sim_id, seed, site, experiment, steps,
		steps_per_year, population, survivors, deaths_cold, deaths_heat,
		deaths_starvation, mean_survival_ticks
		FROM model_summary WHERE sim_id = ?`, simID)
	return sum, err
}

// Individuals retrieves the per-organism rows for a sim ID.
func (db *SummaryDB) Individuals(simID string) ([]IndividualRow, error) {
	var rows []IndividualRow
	err := db.conn.Select(&rows, `SELECT sim_id, organism_id, body_mass,
		attack_rate, prey_density, birth_step, death_step, ticks_alive,
		mean_body_temperature, peak_reserve, prey_consumed, cause_of_death
		FROM individuals WHERE sim_id = ? ORDER BY organism_id`, simID)
	return rows, err
}
