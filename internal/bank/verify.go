package bank

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mind-engage/qbank-loader/internal/db"
)

// Querier lets the report queries run on a *sql.DB or a *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TypeCount is one row of the per-subject, per-type summary.
type TypeCount struct {
	Subject  string
	TypeID   int
	TypeName string // empty when question_type has no row for TypeID
	Total    int
}

// SampleRow is a randomly picked question for manual spot checks.
type SampleRow struct {
	QuestionID      int64
	Subject         string
	TypeName        string
	QuestionContent string
	CorrectAnswer   string
	HasImage        bool
}

// Verification is what Verify reports after loading.
type Verification struct {
	Counts  []TypeCount
	Samples []SampleRow
}

// Verifier runs read-only report queries against question_bank.
type Verifier struct {
	open   Opener
	driver db.Driver
}

func NewVerifier(open Opener, driver db.Driver) *Verifier {
	return &Verifier{open: open, driver: driver}
}

// Verify opens a connection, collects counts and a random sample of
// sampleSize rows, and closes the connection.
func (v *Verifier) Verify(ctx context.Context, sampleSize int) (Verification, error) {
	conn, err := v.open(ctx)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer conn.Close()

	counts, err := Stats(ctx, conn)
	if err != nil {
		return Verification{}, err
	}
	samples, err := Sample(ctx, conn, v.driver, sampleSize)
	if err != nil {
		return Verification{}, err
	}
	return Verification{Counts: counts, Samples: samples}, nil
}

// Stats counts questions grouped by subject and type, ordered for display.
func Stats(ctx context.Context, q Querier) ([]TypeCount, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT q.subject_type, q.type_id, t.type_name, COUNT(q.question_id) AS total
		FROM question_bank q
		LEFT JOIN question_type t ON q.type_id = t.type_id
		GROUP BY q.subject_type, q.type_id, t.type_name
		ORDER BY q.subject_type, q.type_id`)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var c TypeCount
		var name sql.NullString
		if err := rows.Scan(&c.Subject, &c.TypeID, &name, &c.Total); err != nil {
			return nil, err
		}
		c.TypeName = name.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Sample picks n random questions with their type names.
func Sample(ctx context.Context, q Querier, driver db.Driver, n int) ([]SampleRow, error) {
	if n <= 0 {
		return nil, nil
	}
	query := db.Rebind(driver, `
		SELECT q.question_id, q.subject_type, t.type_name, q.question_content, q.correct_answer, q.has_image
		FROM question_bank q
		LEFT JOIN question_type t ON q.type_id = t.type_id
		ORDER BY `+db.RandomFunc(driver)+` LIMIT ?`)
	rows, err := q.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var s SampleRow
		var name sql.NullString
		var hasImage int64
		if err := rows.Scan(&s.QuestionID, &s.Subject, &name, &s.QuestionContent, &s.CorrectAnswer, &hasImage); err != nil {
			return nil, err
		}
		s.TypeName = name.String
		s.HasImage = hasImage != 0
		out = append(out, s)
	}
	return out, rows.Err()
}
