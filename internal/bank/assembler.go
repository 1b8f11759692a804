package bank

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var (
	boundaryPattern = regexp.MustCompile(`^\d+[.、]`)
	optionPattern   = regexp.MustCompile(`^([A-D])[、,.]`)
	imagePattern    = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
)

type state int

const (
	stateIdle state = iota
	stateAccumulating
)

// paragraph keeps the trimmed source text next to its width-folded form.
// Folding is rune-for-rune, so rune offsets line up between the two.
type paragraph struct {
	raw    string
	folded string
}

func newParagraph(text string) paragraph {
	raw := strings.TrimSpace(text)
	return paragraph{raw: raw, folded: width.Fold.String(raw)}
}

// after returns raw text following the first n bytes of the folded text.
func (p paragraph) after(n int) string {
	skip := utf8.RuneCountInString(p.folded[:n])
	r := []rune(p.raw)
	if skip > len(r) {
		return ""
	}
	return strings.TrimSpace(string(r[skip:]))
}

type rule struct {
	name  string
	match func(a *Assembler, p paragraph) bool
	apply func(a *Assembler, p paragraph)
}

// dispatch is evaluated top to bottom; the first match wins.
var dispatch = []rule{
	{
		name:  "boundary",
		match: func(_ *Assembler, p paragraph) bool { return boundaryPattern.MatchString(p.folded) },
		apply: (*Assembler).startQuestion,
	},
	{
		name:  "option",
		match: func(_ *Assembler, p paragraph) bool { return optionPattern.MatchString(p.folded) },
		apply: (*Assembler).setOption,
	},
	{
		name:  "answer",
		match: func(a *Assembler, p paragraph) bool { return a.rules.answer.MatchString(p.folded) },
		apply: (*Assembler).setAnswer,
	},
}

// RuleNames returns the paragraph rules in the order they are tried.
func RuleNames() []string {
	out := make([]string, len(dispatch))
	for i, r := range dispatch {
		out[i] = r.name
	}
	return out
}

type assemblerOptions struct {
	allowEmptyAnswer bool
	types            TypeMap
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*assemblerOptions)

// WithAllowEmptyAnswer keeps records whose answer was never found instead
// of rejecting them.
func WithAllowEmptyAnswer() AssemblerOption {
	return func(o *assemblerOptions) { o.allowEmptyAnswer = true }
}

// WithTypeMap overrides the kind to type_id mapping.
func WithTypeMap(m TypeMap) AssemblerOption {
	return func(o *assemblerOptions) { o.types = m }
}

// Assembler turns a paragraph stream into question records. It holds at
// most one record in progress.
type Assembler struct {
	rules   SubjectRules
	opts    assemblerOptions
	state   state
	current QuestionRecord
	result  Result
}

func NewAssembler(rules SubjectRules, opts ...AssemblerOption) *Assembler {
	o := assemblerOptions{types: DefaultTypeMap()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Assembler{rules: rules, opts: o, result: Result{Subject: rules.Subject}}
}

// Accumulating reports whether a record is in progress.
func (a *Assembler) Accumulating() bool { return a.state == stateAccumulating }

// Feed consumes one paragraph. Blank and unmatched paragraphs are ignored.
func (a *Assembler) Feed(text string) {
	p := newParagraph(text)
	if p.raw == "" {
		return
	}
	for _, r := range dispatch {
		if r.match(a, p) {
			r.apply(a, p)
			return
		}
	}
}

func (a *Assembler) startQuestion(p paragraph) {
	a.Seal()
	q := QuestionRecord{QuestionContent: p.raw}
	if m := imagePattern.FindString(p.raw); m != "" {
		q.ImagePath = m
		q.QuestionContent = strings.TrimSpace(imagePattern.ReplaceAllString(p.raw, ""))
	}
	a.current = q
	a.state = stateAccumulating
}

func (a *Assembler) setOption(p paragraph) {
	if a.state != stateAccumulating {
		return
	}
	loc := optionPattern.FindStringSubmatchIndex(p.folded)
	letter, _ := utf8.DecodeRuneInString(p.folded[loc[2]:loc[3]])
	a.current.setOption(letter, p.after(loc[1]))
}

func (a *Assembler) setAnswer(p paragraph) {
	if a.state != stateAccumulating {
		return
	}
	if ans, ok := a.rules.ExtractAnswer(p.folded); ok {
		a.current.CorrectAnswer = ans
	}
}

// Seal finalizes the record in progress, if any: it classifies it, applies
// defaults and appends it to the result. Records without an answer are
// moved to Rejected unless WithAllowEmptyAnswer is set.
func (a *Assembler) Seal() {
	if a.state != stateAccumulating {
		return
	}
	q := a.current
	a.current = QuestionRecord{}
	a.state = stateIdle

	q.Subject = a.rules.Subject
	q.Kind = Classify(q.Subject, q.CorrectAnswer)
	q.TypeID = a.opts.types[q.Kind]
	q.Score = DefaultScore
	q.Difficulty = DefaultDifficulty
	q.Analysis = ""
	q.HasImage = q.ImagePath != ""

	idx := a.result.Sealed
	a.result.Sealed++

	if q.CorrectAnswer == "" && !a.opts.allowEmptyAnswer {
		a.result.Rejected = append(a.result.Rejected, Issue{Index: idx, Stem: q.QuestionContent, Reason: "no answer found"})
		return
	}
	if d := danglingLetters(q); len(d) > 0 {
		a.result.Warnings = append(a.result.Warnings, Issue{
			Index:  idx,
			Stem:   q.QuestionContent,
			Reason: "answer references empty option " + strings.Join(d, ","),
		})
	}
	a.result.Records = append(a.result.Records, q)
}

// Finish seals the last record and returns everything assembled so far.
// The Assembler is reset and can be reused.
func (a *Assembler) Finish() Result {
	a.Seal()
	res := a.result
	a.result = Result{Subject: a.rules.Subject}
	return res
}

// Assemble runs a fresh Assembler over paragraphs.
func Assemble(rules SubjectRules, paragraphs []string, opts ...AssemblerOption) Result {
	a := NewAssembler(rules, opts...)
	for _, p := range paragraphs {
		a.Feed(p)
	}
	return a.Finish()
}
