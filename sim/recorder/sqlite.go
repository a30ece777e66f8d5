package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/banksim/banksim/sim/trace"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	preset      TEXT NOT NULL,
	seed        INTEGER NOT NULL,
	cycles      INTEGER NOT NULL,
	num_banks   INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	config_yaml TEXT
);

CREATE TABLE IF NOT EXISTS cycles (
	run_id                 TEXT NOT NULL,
	cycle                  INTEGER NOT NULL,
	active_banks           INTEGER,
	liquidations           INTEGER,
	bank_runs              INTEGER,
	fire_sales             INTEGER,
	short_banks            INTEGER,
	interbank_volume       REAL,
	discount_window_volume REAL,
	fire_sale_proceeds     REAL,
	insurance_outlay       REAL,
	mean_capital_ratio     REAL,
	std_capital_ratio      REAL,
	mean_roe               REAL,
	PRIMARY KEY (run_id, cycle),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS bank_cycles (
	run_id          TEXT NOT NULL,
	cycle           INTEGER NOT NULL,
	bank_id         INTEGER NOT NULL,
	strategy_index  INTEGER,
	alpha           REAL,
	beta            REAL,
	gamma           REAL,
	capital_ratio   REAL,
	profit          REAL,
	roe             REAL,
	liquidity_needs REAL,
	interbank_loan  REAL,
	discount_window REAL,
	bank_run        INTEGER,
	fire_sale       INTEGER,
	insolvent       INTEGER,
	PRIMARY KEY (run_id, cycle, bank_id),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS liquidations (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id                   TEXT NOT NULL,
	cycle                    INTEGER NOT NULL,
	bank_id                  INTEGER NOT NULL,
	estate                   REAL,
	payout_ratio             REAL,
	residual_discount_window REAL,
	residual_interbank       REAL,
	depositor_loss           REAL,
	insurance_outlay         REAL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_liquidations_run ON liquidations(run_id, cycle);
`

var errNoRun = errors.New("recorder: BeginRun has not been called")

// SQLiteRecorder persists runs to a SQLite database. Several runs may share
// one file; rows are keyed by the run id BeginRun returns.
type SQLiteRecorder struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.Infof("sqlite recorder opened: %s", dbPath)
	return &SQLiteRecorder{db: db}, nil
}

// DB returns the underlying *sql.DB for queries.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) BeginRun(info RunInfo) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	started := info.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, preset, seed, cycles, num_banks, started_at, config_yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, info.Preset, info.Seed, info.Cycles, info.NumBanks,
		started.UTC().Format(time.RFC3339Nano), string(info.Config),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	r.runID = id
	return id, nil
}

// RecordCycle stores the sector aggregates and every bank record of one
// cycle in a single transaction.
func (r *SQLiteRecorder) RecordCycle(c *trace.CycleRecord, banks []trace.BankCycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return errNoRun
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO cycles
		(run_id, cycle, active_banks, liquidations, bank_runs, fire_sales, short_banks,
		 interbank_volume, discount_window_volume, fire_sale_proceeds, insurance_outlay,
		 mean_capital_ratio, std_capital_ratio, mean_roe)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, c.Cycle, c.ActiveBanks, c.Liquidations, c.BankRuns, c.FireSales, c.ShortBanks,
		c.InterbankVolume, c.DiscountWindowVolume, c.FireSaleProceeds, c.InsuranceOutlay,
		c.MeanCapitalRatio, c.StdCapitalRatio, c.MeanROE,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", c.Cycle, err)
	}

	if len(banks) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO bank_cycles
			(run_id, cycle, bank_id, strategy_index, alpha, beta, gamma, capital_ratio,
			 profit, roe, liquidity_needs, interbank_loan, discount_window,
			 bank_run, fire_sale, insolvent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare bank insert: %w", err)
		}
		defer stmt.Close()
		for i := range banks {
			b := &banks[i]
			if _, err := stmt.Exec(
				r.runID, b.Cycle, b.BankID, b.StrategyIndex, b.Alpha, b.Beta, b.Gamma, b.CapitalRatio,
				b.Profit, b.ROE, b.LiquidityNeeds, b.InterbankLoan, b.DiscountWindow,
				b.BankRun, b.FireSale, b.Insolvent,
			); err != nil {
				return fmt.Errorf("insert bank %d cycle %d: %w", b.BankID, b.Cycle, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordLiquidation(l *trace.LiquidationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return errNoRun
	}

	_, err := r.db.Exec(`INSERT INTO liquidations
		(run_id, cycle, bank_id, estate, payout_ratio, residual_discount_window,
		 residual_interbank, depositor_loss, insurance_outlay)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, l.Cycle, l.BankID, l.Estate, l.PayoutRatio, l.ResidualDiscountWindow,
		l.ResidualInterbank, l.DepositorLoss, l.InsuranceOutlay,
	)
	if err != nil {
		return fmt.Errorf("insert liquidation: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
