package bank_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mind-engage/qbank-loader/internal/bank"
)

func mustRules(t *testing.T, s bank.Subject) bank.SubjectRules {
	t.Helper()
	r, err := bank.RulesFor(s)
	if err != nil {
		t.Fatalf("RulesFor(%s): %v", s, err)
	}
	return r
}

func TestAssemble_SingleChoiceQuestion(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectWritten), []string{
		"1. Sample stem.",
		"A、 Opt1",
		"B、 Opt2",
		"C、 Opt3",
		"D、 Opt4",
		"答案：B",
	})

	if len(res.Records) != 1 {
		t.Fatalf("want 1 record, got %d (%+v)", len(res.Records), res)
	}
	q := res.Records[0]
	if q.OptionA != "Opt1" || q.OptionB != "Opt2" || q.OptionC != "Opt3" || q.OptionD != "Opt4" {
		t.Fatalf("options not captured: %+v", q)
	}
	if q.CorrectAnswer != "B" {
		t.Fatalf("answer = %q, want B", q.CorrectAnswer)
	}
	if q.Kind != bank.KindSingle || q.TypeID != 1 {
		t.Fatalf("kind=%s type_id=%d, want 单选/1", q.Kind, q.TypeID)
	}
	if q.QuestionContent != "1. Sample stem." {
		t.Fatalf("stem = %q", q.QuestionContent)
	}
	if q.Subject != bank.SubjectWritten || q.Score != 1 || q.Difficulty != bank.DefaultDifficulty || q.Analysis != "" {
		t.Fatalf("defaults not applied: %+v", q)
	}
	if q.HasImage || q.ImagePath != "" {
		t.Fatalf("unexpected image: %+v", q)
	}
}

func TestAssemble_SealCountMatchesBoundaries(t *testing.T) {
	paras := []string{
		"C1C2 科目一 题库", // header, ignored
		"1、第一题",
		"A、甲", "B、乙",
		"答案：A",
		"",
		"2.第二题",
		"答案：√",
		"3.第三题", // no answer before the next boundary
		"4.第四题",
		"答案：×",
	}
	res := bank.Assemble(mustRules(t, bank.SubjectWritten), paras)

	if res.Sealed != 4 {
		t.Fatalf("sealed = %d, want 4", res.Sealed)
	}
	if got := len(res.Records) + len(res.Rejected); got != res.Sealed {
		t.Fatalf("records+rejected = %d, sealed = %d", got, res.Sealed)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Index != 2 || res.Rejected[0].Stem != "3.第三题" {
		t.Fatalf("rejected = %+v", res.Rejected)
	}
	for _, q := range res.Records {
		if q.QuestionContent == "" || q.CorrectAnswer == "" {
			t.Fatalf("emitted incomplete record: %+v", q)
		}
	}
}

func TestAssemble_EmptyAnswerPassThrough(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectWritten),
		[]string{"1.第一题", "A、甲", "2.第二题", "答案：A"},
		bank.WithAllowEmptyAnswer())

	if len(res.Rejected) != 0 || len(res.Records) != 2 {
		t.Fatalf("want 2 records and no rejects, got %+v", res)
	}
	first := res.Records[0]
	if first.CorrectAnswer != "" || first.OptionA != "甲" || first.Kind != bank.KindSingle {
		t.Fatalf("first record = %+v", first)
	}
}

func TestAssemble_ImageMarker(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectRoadRules), []string{
		"12. 如图所示，前方标志表示什么？![img](media/image12.png)",
		"A、注意行人",
		"B、注意儿童",
		"答案：B",
		"13. 驾驶机动车应当随车携带哪种证件？",
		"A、驾驶证",
		"答案：A",
	})
	if len(res.Records) != 2 {
		t.Fatalf("want 2 records, got %+v", res)
	}

	img := res.Records[0]
	if !img.HasImage || img.ImagePath != "![img](media/image12.png)" {
		t.Fatalf("image not extracted: %+v", img)
	}
	if strings.Contains(img.QuestionContent, "![img]") {
		t.Fatalf("marker left in stem: %q", img.QuestionContent)
	}
	if img.QuestionContent != "12. 如图所示，前方标志表示什么？" {
		t.Fatalf("stem = %q", img.QuestionContent)
	}

	plain := res.Records[1]
	if plain.HasImage || plain.ImagePath != "" {
		t.Fatalf("plain record has image: %+v", plain)
	}
}

func TestAssemble_StrayParagraphsIgnored(t *testing.T) {
	a := bank.NewAssembler(mustRules(t, bank.SubjectWritten))
	for _, p := range []string{"A、孤立选项", "答案：C", "第一章 道路交通安全法律法规", "   "} {
		a.Feed(p)
		if a.Accumulating() {
			t.Fatalf("%q started a record", p)
		}
	}
	a.Feed("1.第一题")
	a.Feed("E、超出范围的选项")
	a.Feed("答案：A")
	res := a.Finish()

	if res.Sealed != 1 || len(res.Records) != 1 {
		t.Fatalf("want exactly one record, got %+v", res)
	}
	q := res.Records[0]
	if q.OptionA != "" || q.CorrectAnswer != "A" {
		t.Fatalf("stray paragraphs leaked into record: %+v", q)
	}
}

func TestAssemble_FullWidthInput(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectWritten), []string{
		"１．机动车驾驶人饮酒后驾驶机动车的，处多少日以下拘留？",
		"Ａ、５日",
		"Ｂ、１０日",
		"答案：Ｂ",
	})
	if len(res.Records) != 1 {
		t.Fatalf("want 1 record, got %+v", res)
	}
	q := res.Records[0]
	if q.QuestionContent != "１．机动车驾驶人饮酒后驾驶机动车的，处多少日以下拘留？" {
		t.Fatalf("stem should keep source text, got %q", q.QuestionContent)
	}
	if q.OptionA != "５日" || q.OptionB != "１０日" {
		t.Fatalf("options = %q / %q", q.OptionA, q.OptionB)
	}
	if q.CorrectAnswer != "B" {
		t.Fatalf("answer = %q, want B", q.CorrectAnswer)
	}
}

func TestAssemble_RoadRulesFlushKeepsTrueFalse(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectRoadRules), []string{
		"1. 驾驶机动车在雾天行驶应开启雾灯。",
		"答案：正确",
		"2. 夜间会车应使用远光灯。",
		"答案：错误",
	})
	if len(res.Records) != 2 {
		t.Fatalf("want 2 records, got %+v", res)
	}
	for i, want := range []string{bank.AnswerTrue, bank.AnswerFalse} {
		q := res.Records[i]
		if q.CorrectAnswer != want || q.Kind != bank.KindTrueFalse || q.TypeID != 3 {
			t.Fatalf("record %d = %+v", i, q)
		}
	}
}

func TestAssemble_RoadRulesMultipleChoice(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectRoadRules), []string{
		"5. 以下哪些情况不得超车？",
		"A、前车正在左转弯",
		"B、前车正在掉头",
		"C、前车正在超车",
		"D、路口",
		"答案：A,B,C",
	})
	if len(res.Records) != 1 {
		t.Fatalf("want 1 record, got %+v", res)
	}
	q := res.Records[0]
	if q.CorrectAnswer != "ABC" || q.Kind != bank.KindMulti || q.TypeID != 2 {
		t.Fatalf("record = %+v", q)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestAssemble_AnswerReferencesEmptyOption(t *testing.T) {
	res := bank.Assemble(mustRules(t, bank.SubjectWritten), []string{
		"1.第一题",
		"A、甲",
		"B、乙",
		"答案：D",
	})
	if len(res.Records) != 1 {
		t.Fatalf("record should still be emitted: %+v", res)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Reason, "D") {
		t.Fatalf("warnings = %+v", res.Warnings)
	}
}

func TestAssemble_TypeMapOverride(t *testing.T) {
	types := bank.TypeMap{bank.KindSingle: 10, bank.KindMulti: 20, bank.KindTrueFalse: 30}
	res := bank.Assemble(mustRules(t, bank.SubjectWritten),
		[]string{"1.题", "答案：√", "2.题", "A、甲", "答案：A"},
		bank.WithTypeMap(types))
	if len(res.Records) != 2 || res.Records[0].TypeID != 30 || res.Records[1].TypeID != 10 {
		t.Fatalf("records = %+v", res.Records)
	}
}

func TestAssembler_ExplicitSeal(t *testing.T) {
	a := bank.NewAssembler(mustRules(t, bank.SubjectWritten))
	a.Seal() // idle: no-op
	a.Feed("1.题")
	a.Feed("答案：A")
	if !a.Accumulating() {
		t.Fatalf("expected accumulating after boundary")
	}
	a.Seal()
	if a.Accumulating() {
		t.Fatalf("expected idle after seal")
	}
	a.Feed("答案：B") // no record in progress
	res := a.Finish()
	if res.Sealed != 1 || res.Records[0].CorrectAnswer != "A" {
		t.Fatalf("result = %+v", res)
	}

	if again := a.Finish(); again.Sealed != 0 || len(again.Records) != 0 {
		t.Fatalf("Finish should reset the assembler, got %+v", again)
	}
}

func TestRuleNames_PriorityOrder(t *testing.T) {
	want := []string{"boundary", "option", "answer"}
	if got := bank.RuleNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("rule order = %v, want %v", got, want)
	}
}

func TestAssemble_BoundaryWinsOverAnswer(t *testing.T) {
	// a stem that quotes an answer label is still a new question
	res := bank.Assemble(mustRules(t, bank.SubjectWritten), []string{
		"1.题一", "答案：A",
		"2. 题干中出现“答案：B”字样", "答案：C",
	})
	if res.Sealed != 2 || res.Records[1].CorrectAnswer != "C" {
		t.Fatalf("result = %+v", res)
	}
}

func TestRulesFor_UnknownSubject(t *testing.T) {
	if _, err := bank.RulesFor("科目二"); err == nil {
		t.Fatalf("expected error for unknown subject")
	}
}
