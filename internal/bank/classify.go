package bank

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// SubjectRules carries the per-subject answer pattern and classification.
type SubjectRules struct {
	Subject Subject
	answer  *regexp.Regexp
}

// Answer patterns run against width-folded text, so "答案：" arrives as "答案:".
var (
	writtenAnswer = regexp.MustCompile(`答案:\s*([A-Z√×]+)`)
	roadAnswer    = regexp.MustCompile(`答案:\s*([A-Z][A-Z,、]*|正确|错误|√|×)`)
)

// RulesFor returns the rules for a known subject.
func RulesFor(s Subject) (SubjectRules, error) {
	switch s {
	case SubjectWritten:
		return SubjectRules{Subject: s, answer: writtenAnswer}, nil
	case SubjectRoadRules:
		return SubjectRules{Subject: s, answer: roadAnswer}, nil
	default:
		return SubjectRules{}, fmt.Errorf("unknown subject %q", s)
	}
}

// ExtractAnswer finds the answer label in folded text and returns the
// normalized answer.
func (r SubjectRules) ExtractAnswer(folded string) (string, bool) {
	m := r.answer.FindStringSubmatch(folded)
	if m == nil {
		return "", false
	}
	return NormalizeAnswer(r.Subject, m[1]), true
}

var answerSeparators = strings.NewReplacer(",", "", "、", "", " ", "")

// NormalizeAnswer maps the road-rules words 正确/错误 to √/× and removes
// separators between answer letters ("A,B" -> "AB").
func NormalizeAnswer(s Subject, raw string) string {
	a := strings.TrimSpace(raw)
	if s == SubjectRoadRules {
		switch a {
		case "正确":
			return AnswerTrue
		case "错误":
			return AnswerFalse
		}
	}
	return answerSeparators.Replace(a)
}

// IsTrueFalse reports whether the answer is one of the true/false symbols.
func IsTrueFalse(answer string) bool {
	return answer == AnswerTrue || answer == AnswerFalse
}

// Classify derives the question kind from a normalized answer.
// The written bank has no multiple-choice items, so only road rules can
// produce KindMulti.
func Classify(s Subject, answer string) Kind {
	switch {
	case IsTrueFalse(answer):
		return KindTrueFalse
	case s == SubjectRoadRules && utf8.RuneCountInString(answer) > 1:
		return KindMulti
	default:
		return KindSingle
	}
}

// danglingLetters returns answer letters whose option text is empty.
func danglingLetters(q QuestionRecord) []string {
	if q.Kind == KindTrueFalse {
		return nil
	}
	var out []string
	for _, l := range q.CorrectAnswer {
		if q.Option(l) == "" {
			out = append(out, string(l))
		}
	}
	return out
}
