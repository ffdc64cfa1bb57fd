package storage

const createRuns = `CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    solver TEXT NOT NULL,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    dt REAL NOT NULL,
    steps INTEGER NOT NULL,
    steps_taken INTEGER NOT NULL,
    density INTEGER NOT NULL,
    metrics TEXT NOT NULL
);
CREATE INDEX idx_runs_model ON runs (model, solver);`
