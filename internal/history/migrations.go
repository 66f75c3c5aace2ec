package history

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    found INTEGER NOT NULL DEFAULT 0,
    built INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running'
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS builds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id),
    base_name TEXT NOT NULL,
    source_path TEXT NOT NULL,
    succeeded BOOLEAN NOT NULL DEFAULT FALSE,
    output_path TEXT,
    artifact_size INTEGER,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_builds_run_id ON builds(run_id);
`
