package sqlite

// schemaV1 creates every base table and index for the workbench. Forward-only:
// it is never edited after release; new columns and indexes are added by
// later numbered migrations instead.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    id                    TEXT PRIMARY KEY,
    name                  TEXT NOT NULL,
    slug                  TEXT NOT NULL UNIQUE,
    default_source_locale TEXT NOT NULL,
    default_target_locale TEXT NOT NULL,
    enabled_locales_json  TEXT NOT NULL DEFAULT '[]',
    created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id            TEXT PRIMARY KEY,
    project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    type          TEXT NOT NULL,
    original_name TEXT NOT NULL,
    storage_path  TEXT,
    size_bytes    INTEGER,
    content_hash  TEXT,
    received_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    channel       TEXT NOT NULL DEFAULT 'manual'
);
CREATE INDEX IF NOT EXISTS idx_assets_project ON assets(project_id);

CREATE TABLE IF NOT EXISTS schema_profiles (
    id                TEXT PRIMARY KEY,
    project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    signature         TEXT NOT NULL,
    mapping_json      TEXT NOT NULL,
    confidence        REAL NOT NULL DEFAULT 1.0,
    confirmed_by_user INTEGER NOT NULL DEFAULT 0,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(project_id, signature)
);

CREATE TABLE IF NOT EXISTS segments (
    id                TEXT PRIMARY KEY,
    asset_id          TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    sheet_name        TEXT,
    row_index         INTEGER NOT NULL,
    key               TEXT,
    source_locale     TEXT NOT NULL,
    source_text       TEXT NOT NULL CHECK(length(trim(source_text)) > 0 OR key IS NOT NULL),
    char_limit        INTEGER,
    cn_text           TEXT,
    context_json      TEXT NOT NULL DEFAULT '{}',
    placeholders_json TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_segments_asset ON segments(asset_id);
CREATE INDEX IF NOT EXISTS idx_segments_asset_row ON segments(asset_id, row_index);

CREATE TABLE IF NOT EXISTS translation_candidates (
    id              TEXT PRIMARY KEY,
    segment_id      TEXT NOT NULL REFERENCES segments(id) ON DELETE CASCADE,
    target_locale   TEXT NOT NULL,
    text            TEXT NOT NULL,
    type            TEXT NOT NULL,
    score           REAL NOT NULL DEFAULT 0,
    model_info_json TEXT NOT NULL DEFAULT '{}',
    generated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(segment_id, target_locale, type)
);
CREATE INDEX IF NOT EXISTS idx_candidates_segment_locale ON translation_candidates(segment_id, target_locale);

CREATE TABLE IF NOT EXISTS approved_translations (
    id            TEXT PRIMARY KEY,
    segment_id    TEXT NOT NULL REFERENCES segments(id) ON DELETE CASCADE,
    target_locale TEXT NOT NULL,
    text          TEXT NOT NULL CHECK(length(text) > 0),
    status        TEXT NOT NULL DEFAULT 'approved',
    approver      TEXT,
    approved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    revision_of   TEXT,
    pinned        INTEGER NOT NULL DEFAULT 0,
    UNIQUE(segment_id, target_locale)
);

CREATE TABLE IF NOT EXISTS tm_entries (
    id              TEXT PRIMARY KEY,
    project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    source_locale   TEXT NOT NULL,
    target_locale   TEXT NOT NULL,
    source_text     TEXT NOT NULL,
    target_text     TEXT NOT NULL,
    normalized_hash TEXT NOT NULL,
    origin          TEXT NOT NULL,
    origin_asset_id TEXT,
    origin_row_ref  TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    use_count       INTEGER NOT NULL DEFAULT 0,
    last_used_at    DATETIME,
    quality         TEXT NOT NULL DEFAULT 'unrated',
    UNIQUE(project_id, source_locale, target_locale, normalized_hash)
);
CREATE INDEX IF NOT EXISTS idx_tm_lookup ON tm_entries(project_id, source_locale, target_locale, normalized_hash);

CREATE TABLE IF NOT EXISTS glossary_terms (
    id                     TEXT PRIMARY KEY,
    project_id             TEXT NOT NULL,
    locale                 TEXT NOT NULL,
    source_term            TEXT NOT NULL,
    target_term            TEXT NOT NULL,
    rule                   TEXT NOT NULL DEFAULT 'must_use',
    match_type             TEXT NOT NULL DEFAULT 'whole_token',
    case_sensitive         INTEGER NOT NULL DEFAULT 0,
    allow_compounds        INTEGER NOT NULL DEFAULT 0,
    compound_strategy      TEXT NOT NULL DEFAULT 'hyphenate',
    negative_patterns_json TEXT NOT NULL DEFAULT '[]',
    notes                  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_glossary_project_locale ON glossary_terms(project_id, locale);

CREATE TABLE IF NOT EXISTS qa_flags (
    id            TEXT PRIMARY KEY,
    segment_id    TEXT NOT NULL REFERENCES segments(id) ON DELETE CASCADE,
    target_locale TEXT NOT NULL,
    type          TEXT NOT NULL,
    severity      TEXT NOT NULL,
    message       TEXT NOT NULL,
    span_json     TEXT NOT NULL DEFAULT '{}',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at   DATETIME,
    resolved_by   TEXT
);
CREATE INDEX IF NOT EXISTS idx_qa_segment_locale ON qa_flags(segment_id, target_locale);

CREATE TABLE IF NOT EXISTS jobs (
    id                  TEXT PRIMARY KEY,
    project_id          TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    asset_id            TEXT,
    type                TEXT NOT NULL,
    targets_json        TEXT NOT NULL DEFAULT '[]',
    status              TEXT NOT NULL DEFAULT 'queued',
    queued_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    started_at          DATETIME,
    finished_at         DATETIME,
    summary             TEXT NOT NULL DEFAULT '',
    decision_trace_json TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_jobs_project ON jobs(project_id);
`
