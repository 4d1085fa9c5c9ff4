package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/plantsched/core/factory"
	coremetrics "github.com/kilianp07/plantsched/core/metrics"
	"github.com/kilianp07/plantsched/core/model"
)

// Record is one stored scheduling run.
type Record struct {
	RunID       string
	Mode        model.Mode
	Time        time.Time
	KPIs        model.ScheduleKPIs
	Items       int
	Unscheduled int
}

// SQLiteStore keeps the KPI history of scheduling runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func init() {
	coremetrics.MustRegisterMetricsSink("sqlite", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "plantsched.db"
		}
		return NewSQLiteStore(c.Path)
	})
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS schedule_kpi (
        run_id TEXT PRIMARY KEY,
        mode TEXT NOT NULL,
        ts INTEGER NOT NULL,
        makespan REAL,
        total_lateness REAL,
        on_time_rate REAL,
        changeovers INTEGER,
        utilization REAL,
        risk_cost REAL,
        stability REAL,
        items INTEGER,
        unscheduled INTEGER
    );`
	index := `CREATE INDEX IF NOT EXISTS schedule_kpi_mode_ts ON schedule_kpi(mode, ts);`
	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// RecordSchedule stores the run; a repeated run ID overwrites the row.
func (s *SQLiteStore) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	k := ev.KPIs
	_, err := s.db.Exec(`INSERT INTO schedule_kpi (run_id, mode, ts, makespan, total_lateness,
            on_time_rate, changeovers, utilization, risk_cost, stability, items, unscheduled)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            mode = excluded.mode, ts = excluded.ts, makespan = excluded.makespan,
            total_lateness = excluded.total_lateness, on_time_rate = excluded.on_time_rate,
            changeovers = excluded.changeovers, utilization = excluded.utilization,
            risk_cost = excluded.risk_cost, stability = excluded.stability,
            items = excluded.items, unscheduled = excluded.unscheduled`,
		ev.RunID, ev.Mode.String(), ev.Time.UnixNano(), k.Makespan, k.TotalLateness,
		k.OnTimeRate, k.Changeovers, k.Utilization, k.RiskCost, k.Stability, ev.Items, ev.Unscheduled)
	return err
}

// Query returns runs of mode in [start,end], oldest first.
func (s *SQLiteStore) Query(mode model.Mode, start, end time.Time) ([]Record, error) {
	rows, err := s.db.Query(`SELECT run_id, mode, ts, makespan, total_lateness, on_time_rate,
            changeovers, utilization, risk_cost, stability, items, unscheduled
        FROM schedule_kpi WHERE mode = ? AND ts >= ? AND ts <= ? ORDER BY ts, run_id`,
		mode.String(), start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var (
			r  Record
			m  string
			ts int64
		)
		if err := rows.Scan(&r.RunID, &m, &ts, &r.KPIs.Makespan, &r.KPIs.TotalLateness, &r.KPIs.OnTimeRate,
			&r.KPIs.Changeovers, &r.KPIs.Utilization, &r.KPIs.RiskCost, &r.KPIs.Stability, &r.Items, &r.Unscheduled); err != nil {
			return nil, err
		}
		r.Mode = model.Mode(m)
		r.Time = time.Unix(0, ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
