package repository

// Schema is the document store DDL. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id          UUID PRIMARY KEY,
	first_name  TEXT,
	last_name   TEXT,
	email       TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS documents (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	file_type   TEXT,
	category    TEXT NOT NULL DEFAULT 'GENERAL'
	            CHECK (category IN ('GENERAL','PRODUCT','SALES','MARKETING','LEGAL','TECHNICAL','TRAINING','OTHER')),
	status      TEXT NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT','ACTIVE','ARCHIVED')),
	created_by  UUID REFERENCES users(id) ON DELETE SET NULL,
	owner_id    UUID NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_documents_owner_updated
	ON documents (owner_id, updated_at DESC) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS tags (
	id     UUID PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	color  TEXT
);

CREATE TABLE IF NOT EXISTS document_tags (
	document_id  UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	tag_id       UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (document_id, tag_id)
);
`
