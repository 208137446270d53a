package runrecord

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    samples     INTEGER NOT NULL,
    output_dir  TEXT NOT NULL,
    status      TEXT NOT NULL,
    started_at  TEXT NOT NULL,
    finished_at TEXT
);

CREATE TABLE IF NOT EXISTS invocations (
    id            TEXT PRIMARY KEY,
    run_id        TEXT NOT NULL REFERENCES runs(id),
    stage         TEXT NOT NULL,
    sample        TEXT NOT NULL,
    status        TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    started_at    TEXT,
    finished_at   TEXT,
    exit_code     INTEGER,
    error_message TEXT NOT NULL DEFAULT '',
    outputs_json  TEXT NOT NULL DEFAULT '[]',
    publish_error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_invocations_run ON invocations(run_id);
CREATE INDEX IF NOT EXISTS idx_invocations_sample ON invocations(run_id, sample, stage);
`
