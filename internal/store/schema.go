package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id                   INTEGER PRIMARY KEY,
    username             TEXT NOT NULL UNIQUE,
    role                 TEXT NOT NULL,
    avatar_url           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS projects (
    id                   INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    budget               REAL NOT NULL,
    spent                REAL NOT NULL,
    progress             INTEGER NOT NULL,
    status               TEXT NOT NULL,
    start_date           TEXT NOT NULL,
    end_date             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    invoice_number       TEXT NOT NULL,
    project_id           INTEGER NOT NULL REFERENCES projects(id),
    vendor_name          TEXT NOT NULL,
    amount               REAL NOT NULL,
    status               TEXT NOT NULL,
    due_date             TEXT NOT NULL,
    currency             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    id                   INTEGER PRIMARY KEY,
    code                 TEXT NOT NULL,
    name                 TEXT NOT NULL,
    type                 TEXT NOT NULL,
    balance              REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS cash_flow (
    seq                  INTEGER PRIMARY KEY,
    month                TEXT NOT NULL,
    income               REAL NOT NULL,
    expenses             REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    at                   TEXT NOT NULL,
    actor                TEXT NOT NULL,
    action               TEXT NOT NULL,
    target               TEXT NOT NULL DEFAULT '',
    detail               TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_invoices_project ON invoices(project_id);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);
`
