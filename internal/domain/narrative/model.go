package narrative

import (
	"fmt"
	"strings"

	"pefitness/internal/domain/fitness"
)

// Kind classifies a narrative outcome.
type Kind string

// Kind constants
const (
	KindText              Kind = "text"
	KindCredentialMissing Kind = "credential_missing"
	KindUpstream          Kind = "upstream"
	KindNetwork           Kind = "network"
	KindBusy              Kind = "busy"
)

// User-facing messages and prefixes.
const (
	MessageCredentialMissing = "⚠️ 請在上方輸入 OpenRouter Key，或請管理員設定 FITNESS_AI_KEY。"
	MessageBusy              = "教練正在思考中，請稍候…"
	PrefixUpstream           = "API 錯誤: "
	PrefixNetwork            = "連線錯誤: "
	UnknownUpstreamError     = "未知錯誤"
)

// Result is the terminal outcome of a narrative request: either Text or
// ErrorMessage is set, never both.
type Result struct {
	Kind         Kind
	Text         string
	ErrorMessage string
}

// OK reports whether the result carries a narrative.
func (r Result) OK() bool {
	return r.Kind == KindText
}

// Message returns whichever string should be displayed.
func (r Result) Message() string {
	if r.OK() {
		return r.Text
	}
	return r.ErrorMessage
}

// Success wraps completion text verbatim.
func Success(text string) Result {
	return Result{Kind: KindText, Text: text}
}

// CredentialMissing is returned when no key is configured anywhere.
func CredentialMissing() Result {
	return Result{Kind: KindCredentialMissing, ErrorMessage: MessageCredentialMissing}
}

// Busy is returned when the visitor already has a request outstanding.
func Busy() Result {
	return Result{Kind: KindBusy, ErrorMessage: MessageBusy}
}

// Upstream wraps an error reported by the completion endpoint.
func Upstream(message string) Result {
	if strings.TrimSpace(message) == "" {
		message = UnknownUpstreamError
	}
	return Result{Kind: KindUpstream, ErrorMessage: PrefixUpstream + message}
}

// Network wraps a transport failure.
func Network(err error) Result {
	msg := "unknown"
	if err != nil {
		msg = err.Error()
	}
	return Result{Kind: KindNetwork, ErrorMessage: PrefixNetwork + msg}
}

// BuildPrompt renders the fixed coaching instruction for an assessment.
// PRE: r was produced by fitness.Build
// POST: returns a prompt naming the student and every item with its score
func BuildPrompt(r fitness.AssessmentResult) string {
	m := r.Measurement
	score := func(s fitness.Subject) int {
		it, _ := r.Item(s)
		return it.Score
	}

	var sb strings.Builder
	sb.WriteString("角色：你是一位資深、熱情的小學體育科主任。")
	sb.WriteString("任務：根據以下學生的體適能數據，撰寫一份約 150 字的「個人化運動建議」。")
	sb.WriteString(fmt.Sprintf("學生：%s (%s, %s) ", m.Name, m.GenderLabel(), m.ClassLabel))
	sb.WriteString("數據： ")
	sb.WriteString(fmt.Sprintf("- 仰臥起坐: %d次 (得分%d/5) ", m.SitUps, score(fitness.SubjectSitUps)))
	sb.WriteString(fmt.Sprintf("- 柔軟度: %scm (得分%d/5) ", formatValue(m.Flexibility), score(fitness.SubjectFlexibility)))
	sb.WriteString(fmt.Sprintf("- 手握力: %skg (得分%d/5) ", formatValue(m.HandGrip), score(fitness.SubjectGrip)))
	sb.WriteString(fmt.Sprintf("- 9分鐘跑: %sm (得分%d/5) ", formatValue(m.Run9Min), score(fitness.SubjectCardio)))
	sb.WriteString(fmt.Sprintf("- BMI: %.1f (得分%d/5) ", r.BMI, score(fitness.SubjectBMI)))
	sb.WriteString("請包含：1. 親切開場。 ")
	sb.WriteString("2. 針對弱項 (2分或以下) 給出具體訓練建議（例如：如果柔軟度差，建議做什麼伸展）。 ")
	sb.WriteString("3. 根據優勢推薦適合的校隊。 ")
	sb.WriteString("4. 語氣要正面、溫暖、鼓勵。")
	return sb.String()
}

// formatValue prints whole numbers without a trailing ".0".
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
