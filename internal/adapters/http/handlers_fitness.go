package web

import (
	"errors"
	"net/http"

	"pefitness/internal/adapters/http/middleware"
	"pefitness/internal/application/orchestrators"
	"pefitness/internal/application/projections"
	"pefitness/internal/domain/fitness"
	"pefitness/internal/domain/narrative"
)

const fitnessTitle = "AI 體適能評測"

// fitnessPage is the view model of the fitness form and its results.
type fitnessPage struct {
	Form         fitness.RawMeasurement
	ClassLabels  []string
	Error        string
	Report       *projections.FitnessReport
	Narrative    *narrative.Result
	ShowKeyField bool
}

func (s *Server) newFitnessPage(m fitness.RawMeasurement) fitnessPage {
	return fitnessPage{
		Form:         m,
		ClassLabels:  fitness.ClassLabels,
		ShowKeyField: s.deps.DeploymentAIKey == "",
	}
}

// handleFitnessForm handles GET /fitness-test
func (s *Server) handleFitnessForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "fitness.html", fitnessTitle, s.newFitnessPage(fitness.NewRawMeasurement()))
}

// handleFitnessSubmit handles POST /fitness-test: score, save in the
// background, render.
func (s *Server) handleFitnessSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	m, err := parseMeasurement(r)
	if err == nil {
		var result fitness.AssessmentResult
		result, err = s.assess(r, m)
		if err == nil {
			page := s.newFitnessPage(result.Measurement)
			report := projections.QueryFitnessReport(result)
			page.Report = &report
			s.render(w, r, http.StatusOK, "fitness.html", fitnessTitle, page)
			return
		}
	}
	s.renderFitnessError(w, r, m, err)
}

// handleFitnessReport handles POST /fitness-test/report: rebuild the
// assessment from the resubmitted inputs and ask for a narrative. Nothing is
// saved on this path.
func (s *Server) handleFitnessReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	m, err := parseMeasurement(r)
	if err != nil {
		s.renderFitnessError(w, r, m, err)
		return
	}
	result, err := fitness.Build(m)
	if err != nil {
		s.renderFitnessError(w, r, m, err)
		return
	}

	res := s.narrate(r, result, r.PostFormValue("apiKey"))
	page := s.newFitnessPage(result.Measurement)
	report := projections.QueryFitnessReport(result)
	page.Report = &report
	page.Narrative = &res
	s.render(w, r, http.StatusOK, "fitness.html", fitnessTitle, page)
}

func (s *Server) renderFitnessError(w http.ResponseWriter, r *http.Request, m fitness.RawMeasurement, err error) {
	var verr *fitness.ValidationError
	if !errors.As(err, &verr) {
		internalError(w, err)
		return
	}
	page := s.newFitnessPage(m)
	page.Error = verr.Error()
	s.render(w, r, http.StatusBadRequest, "fitness.html", fitnessTitle, page)
}

func (s *Server) assess(r *http.Request, m fitness.RawMeasurement) (fitness.AssessmentResult, error) {
	return orchestrators.ExecuteAssessment(r.Context(), orchestrators.AssessmentInput{
		Measurement: m,
		OwnerID:     middleware.OwnerID(r.Context()),
	}, orchestrators.AssessmentDeps{
		Sink:       s.deps.Sink,
		GenerateID: s.deps.GenerateID,
		Now:        s.deps.Now,
	})
}

func (s *Server) narrate(r *http.Request, result fitness.AssessmentResult, userKey string) narrative.Result {
	return orchestrators.ExecuteRequestNarrative(r.Context(), orchestrators.NarrativeInput{
		Assessment:     result,
		UserCredential: userKey,
		VisitorID:      middleware.VisitorFromContext(r.Context()),
	}, orchestrators.NarrativeDeps{
		DeploymentCredential: s.deps.DeploymentAIKey,
		Completer:            s.deps.Completer,
		Guard:                s.guard,
	})
}
