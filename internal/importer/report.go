package importer

import (
	"fmt"
	"io"

	"github.com/mind-engage/qbank-loader/internal/bank"
)

const maxStemRunes = 80

// WriteVerification prints the per-type counts and the sampled questions.
func WriteVerification(w io.Writer, v bank.Verification) {
	fmt.Fprintln(w, "\n===== 数据统计结果 =====")
	for _, c := range v.Counts {
		fmt.Fprintf(w, "科目：%s | 题型：%s | 题目数量：%d\n", c.Subject, typeLabel(c.TypeName, c.TypeID), c.Total)
	}

	fmt.Fprintf(w, "\n===== 随机抽查%d道题 =====\n", len(v.Samples))
	for i, s := range v.Samples {
		fmt.Fprintf(w, "\n第%d道【%s-%s】\n", i+1, s.Subject, s.TypeName)
		fmt.Fprintf(w, "题目ID：%d\n", s.QuestionID)
		fmt.Fprintf(w, "题干：%s\n", truncate(s.QuestionContent, maxStemRunes))
		img := "无"
		if s.HasImage {
			img = "有"
		}
		fmt.Fprintf(w, "正确答案：%s | 有无图片：%s\n", s.CorrectAnswer, img)
	}
}

func typeLabel(name string, id int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("type_id=%d", id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
