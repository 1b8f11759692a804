package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TypeRow is one question_type lookup row.
type TypeRow struct {
	ID   int
	Name string
}

// EnsureSchema creates question_type and question_bank when they are
// missing and seeds the type rows. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver, types []TypeRow) error {
	var schema string
	switch driver {
	case DriverMySQL:
		schema = schemaMySQL
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}

	// mysql rejects multi-statement scripts unless the DSN opts in
	if _, err := db.ExecContext(ctx, schema); err != nil {
		for _, stmt := range splitSQL(schema) {
			if _, e := db.ExecContext(ctx, stmt); e != nil {
				return fmt.Errorf("schema failed at: %s\nerror: %w", firstLine(stmt), e)
			}
		}
	}

	seed := `INSERT INTO question_type (type_id, type_name) VALUES (?, ?) ON CONFLICT (type_id) DO NOTHING`
	if driver == DriverMySQL {
		seed = `INSERT IGNORE INTO question_type (type_id, type_name) VALUES (?, ?)`
	}
	seed = Rebind(driver, seed)
	for _, t := range types {
		if _, err := db.ExecContext(ctx, seed, t.ID, t.Name); err != nil {
			return fmt.Errorf("seed question_type %d: %w", t.ID, err)
		}
	}
	return nil
}

func splitSQL(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p+";")
		}
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

const schemaMySQL = `
CREATE TABLE IF NOT EXISTS question_type (
  type_id   INT PRIMARY KEY,
  type_name VARCHAR(32) NOT NULL
) DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS question_bank (
  question_id      BIGINT AUTO_INCREMENT PRIMARY KEY,
  subject_type     VARCHAR(16) NOT NULL,
  type_id          INT NOT NULL,
  question_content TEXT NOT NULL,
  option_a         TEXT NOT NULL,
  option_b         TEXT NOT NULL,
  option_c         TEXT NOT NULL,
  option_d         TEXT NOT NULL,
  correct_answer   VARCHAR(16) NOT NULL,
  analysis         TEXT NOT NULL,
  score            INT NOT NULL DEFAULT 1,
  difficulty       VARCHAR(8) NOT NULL DEFAULT '易',
  has_image        TINYINT NOT NULL DEFAULT 0,
  image_path       VARCHAR(512) NOT NULL DEFAULT '',
  CONSTRAINT fk_question_type FOREIGN KEY (type_id) REFERENCES question_type(type_id),
  CONSTRAINT chk_answer CHECK (correct_answer <> '')
) DEFAULT CHARSET=utf8mb4;
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS question_type (
  type_id   INTEGER PRIMARY KEY,
  type_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_bank (
  question_id      INTEGER PRIMARY KEY AUTOINCREMENT,
  subject_type     TEXT NOT NULL,
  type_id          INTEGER NOT NULL REFERENCES question_type(type_id),
  question_content TEXT NOT NULL,
  option_a         TEXT NOT NULL DEFAULT '',
  option_b         TEXT NOT NULL DEFAULT '',
  option_c         TEXT NOT NULL DEFAULT '',
  option_d         TEXT NOT NULL DEFAULT '',
  correct_answer   TEXT NOT NULL CHECK (correct_answer <> ''),
  analysis         TEXT NOT NULL DEFAULT '',
  score            INTEGER NOT NULL DEFAULT 1,
  difficulty       TEXT NOT NULL DEFAULT '易',
  has_image        INTEGER NOT NULL DEFAULT 0,
  image_path       TEXT NOT NULL DEFAULT ''
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS question_type (
  type_id   INTEGER PRIMARY KEY,
  type_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_bank (
  question_id      BIGSERIAL PRIMARY KEY,
  subject_type     TEXT NOT NULL,
  type_id          INTEGER NOT NULL REFERENCES question_type(type_id),
  question_content TEXT NOT NULL,
  option_a         TEXT NOT NULL DEFAULT '',
  option_b         TEXT NOT NULL DEFAULT '',
  option_c         TEXT NOT NULL DEFAULT '',
  option_d         TEXT NOT NULL DEFAULT '',
  correct_answer   TEXT NOT NULL CHECK (correct_answer <> ''),
  analysis         TEXT NOT NULL DEFAULT '',
  score            INTEGER NOT NULL DEFAULT 1,
  difficulty       TEXT NOT NULL DEFAULT '易',
  has_image        SMALLINT NOT NULL DEFAULT 0,
  image_path       TEXT NOT NULL DEFAULT ''
);
`
