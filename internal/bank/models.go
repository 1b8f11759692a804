package bank

// Subject is the exam bank a question came from. The value is stored as-is
// in question_bank.subject_type.
type Subject string

const (
	SubjectWritten   Subject = "科目一" // written theory test
	SubjectRoadRules Subject = "科目四" // road rules / scenario test
)

// Kind is the question type before it is mapped to a question_type id.
type Kind string

const (
	KindSingle    Kind = "单选"
	KindMulti     Kind = "多选"
	KindTrueFalse Kind = "判断"
)

// Kinds lists every kind in type-id order of the default map.
var Kinds = []Kind{KindSingle, KindMulti, KindTrueFalse}

// TypeID is the question_type.type_id a record is stored with.
type TypeID int

// TypeMap maps kinds to question_type ids.
type TypeMap map[Kind]TypeID

// DefaultTypeMap matches the seeded question_type table.
func DefaultTypeMap() TypeMap {
	return TypeMap{KindSingle: 1, KindMulti: 2, KindTrueFalse: 3}
}

const (
	AnswerTrue  = "√"
	AnswerFalse = "×"

	DefaultScore      = 1
	DefaultDifficulty = "易"
)

// QuestionRecord is one sealed question ready for insertion.
type QuestionRecord struct {
	Subject         Subject `json:"subject_type"`
	Kind            Kind    `json:"kind"`
	TypeID          TypeID  `json:"type_id"`
	QuestionContent string  `json:"question_content"`
	OptionA         string  `json:"option_a"`
	OptionB         string  `json:"option_b"`
	OptionC         string  `json:"option_c"`
	OptionD         string  `json:"option_d"`
	CorrectAnswer   string  `json:"correct_answer"`
	Analysis        string  `json:"analysis"`
	Score           int     `json:"score"`
	Difficulty      string  `json:"difficulty"`
	HasImage        bool    `json:"has_image"`
	ImagePath       string  `json:"image_path"`
}

// Option returns the option text for letter A-D, or "" for anything else.
func (q QuestionRecord) Option(letter rune) string {
	switch letter {
	case 'A':
		return q.OptionA
	case 'B':
		return q.OptionB
	case 'C':
		return q.OptionC
	case 'D':
		return q.OptionD
	}
	return ""
}

func (q *QuestionRecord) setOption(letter rune, text string) {
	switch letter {
	case 'A':
		q.OptionA = text
	case 'B':
		q.OptionB = text
	case 'C':
		q.OptionC = text
	case 'D':
		q.OptionD = text
	}
}

// Issue describes a sealed record that was rejected or looks suspicious.
type Issue struct {
	Index  int    `json:"index"` // 0-based position among sealed records
	Stem   string `json:"stem"`
	Reason string `json:"reason"`
}

// Result is what an Assembler produces for one paragraph stream.
type Result struct {
	Subject  Subject
	Records  []QuestionRecord
	Rejected []Issue
	Warnings []Issue
	// Sealed counts every seal, including rejected records.
	Sealed int
}
