package bank_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mind-engage/qbank-loader/internal/bank"
)

func TestAssemblerFeatures(t *testing.T) {
	options := godog.Options{
		Format:    "progress",
		Paths:     []string{"features"},
		Output:    io.Discard,
		TestingT:  t,
		Randomize: 0,
	}
	suite := godog.TestSuite{
		Name:                "assembler",
		ScenarioInitializer: initializeAssemblerScenario,
		Options:             &options,
	}
	if suite.Run() != 0 {
		t.Fatalf("assembler features failed")
	}
}

// assemblerState holds one scenario's input and result.
type assemblerState struct {
	subject    bank.Subject
	paragraphs []string
	result     bank.Result
}

func initializeAssemblerScenario(ctx *godog.ScenarioContext) {
	s := &assemblerState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*s = assemblerState{}
		return ctx, nil
	})

	ctx.Step(`^the (written-test|road-rules) bank$`, s.theBank)
	ctx.Step(`^the paragraphs:$`, s.theParagraphs)
	ctx.Step(`^the paragraphs are assembled$`, s.assemble)
	ctx.Step(`^(\d+) records? (?:is|are) sealed$`, s.recordsSealed)
	ctx.Step(`^(\d+) records? (?:is|are) rejected$`, s.recordsRejected)
	ctx.Step(`^record (\d+) has (\w+) "([^"]*)"$`, s.recordHasField)
	ctx.Step(`^record (\d+) is (single-choice|multiple-choice|true/false)$`, s.recordIsKind)
	ctx.Step(`^record (\d+) has an image$`, s.recordHasImage)
}

func (s *assemblerState) theBank(name string) error {
	if name == "road-rules" {
		s.subject = bank.SubjectRoadRules
	} else {
		s.subject = bank.SubjectWritten
	}
	return nil
}

func (s *assemblerState) theParagraphs(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		s.paragraphs = append(s.paragraphs, row.Cells[0].Value)
	}
	return nil
}

func (s *assemblerState) assemble() error {
	rules, err := bank.RulesFor(s.subject)
	if err != nil {
		return err
	}
	s.result = bank.Assemble(rules, s.paragraphs)
	return nil
}

func (s *assemblerState) recordsSealed(n int) error {
	if s.result.Sealed != n {
		return fmt.Errorf("sealed %d records, want %d", s.result.Sealed, n)
	}
	return nil
}

func (s *assemblerState) recordsRejected(n int) error {
	if len(s.result.Rejected) != n {
		return fmt.Errorf("rejected %d records, want %d", len(s.result.Rejected), n)
	}
	return nil
}

func (s *assemblerState) record(n int) (bank.QuestionRecord, error) {
	if n < 1 || n > len(s.result.Records) {
		return bank.QuestionRecord{}, fmt.Errorf("no record %d (have %d)", n, len(s.result.Records))
	}
	return s.result.Records[n-1], nil
}

func (s *assemblerState) recordHasField(n int, field, want string) error {
	q, err := s.record(n)
	if err != nil {
		return err
	}
	var got string
	switch field {
	case "question_content":
		got = q.QuestionContent
	case "option_a":
		got = q.OptionA
	case "option_b":
		got = q.OptionB
	case "option_c":
		got = q.OptionC
	case "option_d":
		got = q.OptionD
	case "correct_answer":
		got = q.CorrectAnswer
	case "image_path":
		got = q.ImagePath
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	if got != want {
		return fmt.Errorf("%s = %q, want %q", field, got, want)
	}
	return nil
}

func (s *assemblerState) recordIsKind(n int, kind string) error {
	q, err := s.record(n)
	if err != nil {
		return err
	}
	want := map[string]bank.Kind{
		"single-choice":   bank.KindSingle,
		"multiple-choice": bank.KindMulti,
		"true/false":      bank.KindTrueFalse,
	}[kind]
	if q.Kind != want {
		return fmt.Errorf("kind = %s, want %s", q.Kind, want)
	}
	return nil
}

func (s *assemblerState) recordHasImage(n int) error {
	q, err := s.record(n)
	if err != nil {
		return err
	}
	if !q.HasImage {
		return fmt.Errorf("record %d has no image", n)
	}
	return nil
}
