package narrative

import (
	"errors"
	"strings"
	"testing"

	"pefitness/internal/domain/fitness"
)

func sampleAssessment(t *testing.T) fitness.AssessmentResult {
	t.Helper()
	m := fitness.NewRawMeasurement()
	m.Name = "陳小美"
	m.ClassNumber = 7
	m.ClassLabel = "4B"
	m.Gender = fitness.GenderFemale
	m.SitUps = 22
	m.Flexibility = 27.5
	m.HandGrip = 9
	m.Run9Min = 1100
	r, err := fitness.Build(m)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

// TestBuildPrompt_EmbedsStudentAndScores tests that every item and the demographics appear.
func TestBuildPrompt_EmbedsStudentAndScores(t *testing.T) {
	p := BuildPrompt(sampleAssessment(t))
	wants := []string{
		"陳小美",
		"(女, 4B)",
		"仰臥起坐: 22次 (得分4/5)",
		"柔軟度: 27.5cm (得分5/5)",
		"手握力: 9kg (得分1/5)",
		"9分鐘跑: 1100m (得分5/5)",
		"BMI: 17.8 (得分2/5)",
		"1. 親切開場",
		"2分或以下",
		"推薦適合的校隊",
		"鼓勵",
	}
	for _, w := range wants {
		if !strings.Contains(p, w) {
			t.Errorf("prompt missing %q\nprompt: %s", w, p)
		}
	}
}

// TestBuildPrompt_InstructionOrder verifies the fixed instruction sequence.
func TestBuildPrompt_InstructionOrder(t *testing.T) {
	p := BuildPrompt(sampleAssessment(t))
	steps := []string{"1. 親切開場", "2. 針對弱項", "3. 根據優勢", "4. 語氣要正面"}
	last := -1
	for _, s := range steps {
		i := strings.Index(p, s)
		if i < 0 {
			t.Fatalf("missing step %q", s)
		}
		if i <= last {
			t.Errorf("step %q out of order", s)
		}
		last = i
	}
}

// TestBuildPrompt_MaleLabel tests gender localization for boys.
func TestBuildPrompt_MaleLabel(t *testing.T) {
	r := sampleAssessment(t)
	r.Measurement.Gender = fitness.GenderMale
	if p := BuildPrompt(r); !strings.Contains(p, "(男, 4B)") {
		t.Errorf("expected male label in prompt: %s", p)
	}
}

// TestResult_Constructors tests the message prefixes of each outcome.
func TestResult_Constructors(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		kind Kind
		msg  string
	}{
		{"success", Success("  keep going  "), KindText, "  keep going  "},
		{"missing", CredentialMissing(), KindCredentialMissing, MessageCredentialMissing},
		{"busy", Busy(), KindBusy, MessageBusy},
		{"upstream", Upstream("quota exceeded"), KindUpstream, "API 錯誤: quota exceeded"},
		{"upstream blank", Upstream(""), KindUpstream, "API 錯誤: 未知錯誤"},
		{"network", Network(errors.New("dial tcp: refused")), KindNetwork, "連線錯誤: dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.r.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.r.Kind, tt.kind)
			}
			if tt.r.Message() != tt.msg {
				t.Errorf("Message = %q, want %q", tt.r.Message(), tt.msg)
			}
			if tt.r.OK() != (tt.kind == KindText) {
				t.Errorf("OK = %v for kind %s", tt.r.OK(), tt.kind)
			}
		})
	}
}
