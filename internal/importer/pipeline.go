// Package importer runs the parse, insert and verify steps for the
// question banks in order.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/mind-engage/qbank-loader/internal/bank"
	"github.com/mind-engage/qbank-loader/internal/storage"
)

// Bank is one document to import.
type Bank struct {
	Subject bank.Subject
	Path    string
}

// ParagraphReader returns the paragraph texts of the document at path.
type ParagraphReader func(path string) ([]string, error)

type Inserter interface {
	InsertBatch(ctx context.Context, qs []bank.QuestionRecord) (int, error)
}

type Verifier interface {
	Verify(ctx context.Context, sampleSize int) (bank.Verification, error)
}

// BankOutcome is what happened to one bank. Err holds an insert failure;
// the run carries on past it.
type BankOutcome struct {
	Subject     bank.Subject
	Path        string
	Parsed      int
	Rejected    int
	Warnings    int
	Inserted    int
	Snapshot    string // store key of the JSON snapshot, if one was written
	SnapshotURL string
	Err         error
}

type Report struct {
	RunID        string
	Banks        []BankOutcome
	Verification bank.Verification
}

// Pipeline wires the steps together. Snapshots is optional.
type Pipeline struct {
	RunID      string
	Read       ParagraphReader
	Loader     Inserter
	Verifier   Verifier
	Snapshots  storage.Store
	Options    []bank.AssemblerOption
	SampleSize int
	Out        io.Writer
}

// Run imports every bank in order, then verifies the table. It returns an
// error only for failures that should end the process: unreadable input,
// lost database connectivity or a failed verification query.
func (p *Pipeline) Run(ctx context.Context, banks []Bank) (Report, error) {
	if p.RunID == "" {
		p.RunID = uuid.NewString()
	}
	if p.Out == nil {
		p.Out = io.Discard
	}
	rep := Report{RunID: p.RunID}

	for _, b := range banks {
		out, err := p.ImportBank(ctx, b)
		rep.Banks = append(rep.Banks, out)
		if err != nil {
			return rep, err
		}
	}

	v, err := p.Verifier.Verify(ctx, p.SampleSize)
	if err != nil {
		return rep, fmt.Errorf("verify: %w", err)
	}
	rep.Verification = v
	WriteVerification(p.Out, v)
	return rep, nil
}

// ImportBank parses and loads a single bank.
func (p *Pipeline) ImportBank(ctx context.Context, b Bank) (BankOutcome, error) {
	out := BankOutcome{Subject: b.Subject, Path: b.Path}

	rules, err := bank.RulesFor(b.Subject)
	if err != nil {
		return out, err
	}
	paras, err := p.Read(b.Path)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", b.Subject, err)
	}

	res := bank.Assemble(rules, paras, p.Options...)
	out.Parsed = len(res.Records)
	out.Rejected = len(res.Rejected)
	out.Warnings = len(res.Warnings)
	for _, is := range res.Rejected {
		log.Printf("%s #%d rejected: %s: %s", b.Subject, is.Index+1, is.Reason, is.Stem)
	}
	for _, is := range res.Warnings {
		log.Printf("%s #%d: %s: %s", b.Subject, is.Index+1, is.Reason, is.Stem)
	}
	fmt.Fprintf(p.Out, "解析%s题库完成，共提取 %d 道题目\n", b.Subject, out.Parsed)

	if p.Snapshots != nil {
		key := fmt.Sprintf("%s/%s.json", p.RunID, b.Subject)
		if out.Snapshot, err = storage.PutJSON(p.Snapshots, key, res.Records); err != nil {
			log.Printf("snapshot %s: %v", key, err)
		} else if out.SnapshotURL, err = p.Snapshots.URL(out.Snapshot); err != nil {
			log.Printf("snapshot url %s: %v", out.Snapshot, err)
		}
	}

	if len(res.Records) == 0 {
		fmt.Fprintln(p.Out, "无有效题目，跳过插入")
		return out, nil
	}

	n, err := p.Loader.InsertBatch(ctx, res.Records)
	if err != nil {
		if errors.Is(err, bank.ErrConnect) {
			return out, err
		}
		out.Err = err
		log.Printf("insert %s rolled back: %v", b.Subject, err)
		fmt.Fprintf(p.Out, "插入失败：%v\n", err)
		return out, nil
	}
	out.Inserted = n
	fmt.Fprintf(p.Out, "成功插入 %d 道题目（%s）\n", n, b.Subject)
	return out, nil
}
