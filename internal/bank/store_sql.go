package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/qbank-loader/internal/db"
)

// ErrConnect marks failures to open a database connection, as opposed to
// failures of the statements run on it.
var ErrConnect = errors.New("connect to database")

// Opener opens a database handle. The caller closes it.
type Opener func(ctx context.Context) (*sql.DB, error)

// maxRowsPerStatement keeps one INSERT well under every driver's
// bind-parameter limit (13 columns x 500 rows).
const maxRowsPerStatement = 500

var insertColumns = []string{
	"subject_type", "type_id", "question_content",
	"option_a", "option_b", "option_c", "option_d",
	"correct_answer", "analysis", "score",
	"difficulty", "has_image", "image_path",
}

// Loader writes sealed records into question_bank.
type Loader struct {
	open      Opener
	driver    db.Driver
	chunkSize int
}

func NewLoader(open Opener, driver db.Driver) *Loader {
	return &Loader{open: open, driver: driver, chunkSize: maxRowsPerStatement}
}

// InsertBatch inserts all records in a single transaction and returns the
// number of rows written. An empty batch returns 0 without opening a
// connection. On any error nothing from the batch is kept.
func (l *Loader) InsertBatch(ctx context.Context, qs []QuestionRecord) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	conn, err := l.open(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	total := 0
	for start := 0; start < len(qs); start += l.chunkSize {
		end := min(start+l.chunkSize, len(qs))
		query, args := buildInsert(l.driver, qs[start:end])
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert question_bank: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(end - start)
		}
		total += int(n)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func buildInsert(driver db.Driver, qs []QuestionRecord) (string, []any) {
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(insertColumns)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO question_bank (")
	b.WriteString(strings.Join(insertColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(qs)*len(insertColumns))
	for i, q := range qs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
		hasImage := 0
		if q.HasImage {
			hasImage = 1
		}
		args = append(args,
			string(q.Subject), int(q.TypeID), q.QuestionContent,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD,
			q.CorrectAnswer, q.Analysis, q.Score,
			q.Difficulty, hasImage, q.ImagePath,
		)
	}
	return db.Rebind(driver, b.String()), args
}
