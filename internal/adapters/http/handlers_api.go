package web

import (
	"errors"
	"net/http"

	"pefitness/internal/domain/fitness"
	"pefitness/internal/domain/narrative"
)

type itemJSON struct {
	Subject  fitness.Subject `json:"subject"`
	Label    string          `json:"label"`
	Value    float64         `json:"value"`
	Unit     string          `json:"unit"`
	Score    int             `json:"score"`
	FullMark int             `json:"fullMark"`
}

type assessmentJSON struct {
	Items           []itemJSON `json:"items"`
	BMI             float64    `json:"bmi"`
	TotalScore      int        `json:"totalScore"`
	Recommendations []string   `json:"recommendations"`
	Best            string     `json:"best"`
	Worst           string     `json:"worst"`
}

func toAssessmentJSON(r fitness.AssessmentResult) assessmentJSON {
	items := make([]itemJSON, len(r.Items))
	for i, it := range r.Items {
		value := it.RawValue
		if it.Subject == fitness.SubjectBMI {
			value = r.BMI
		}
		items[i] = itemJSON{it.Subject, it.Label, value, it.Unit, it.Score, it.FullMark}
	}
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return assessmentJSON{
		Items:           items,
		BMI:             r.BMI,
		TotalScore:      r.TotalScore(),
		Recommendations: recs,
		Best:            string(r.Best.Subject),
		Worst:           string(r.Worst.Subject),
	}
}

type narrativeRequest struct {
	fitness.RawMeasurement
	APIKey string `json:"apiKey"`
}

type narrativeJSON struct {
	Kind  narrative.Kind `json:"kind"`
	Text  string         `json:"text,omitempty"`
	Error string         `json:"error,omitempty"`
}

// handleAPIAssessment handles POST /api/fitness/assessments
func (s *Server) handleAPIAssessment(w http.ResponseWriter, r *http.Request) {
	var m fitness.RawMeasurement
	if err := strictDecode(w, r, &m); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.assess(r, m)
	if err != nil {
		s.writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentJSON(result))
}

// handleAPINarrative handles POST /api/fitness/narrative. The outcome is
// always a terminal result; only invalid input is an HTTP error.
func (s *Server) handleAPINarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := fitness.Build(req.RawMeasurement)
	if err != nil {
		s.writeAssessmentError(w, err)
		return
	}
	res := s.narrate(r, result, req.APIKey)
	writeJSON(w, http.StatusOK, narrativeJSON{Kind: res.Kind, Text: res.Text, Error: res.ErrorMessage})
}

func (s *Server) writeAssessmentError(w http.ResponseWriter, err error) {
	var verr *fitness.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error(), "field": verr.Field})
		return
	}
	internalError(w, err)
}
