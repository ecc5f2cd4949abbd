package server

import (
	"net/http"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/unlock"
	"github.com/teranos/cashngo/version"
)

// HandleHealth reports liveness and build information
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Short(),
		"backend": s.opts.Backend,
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleListGigs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.PostedGigs(r.Context()))
}

func (s *Server) handlePostGig(w http.ResponseWriter, r *http.Request) {
	var in board.GigInput
	if !readJSON(w, r, &in) {
		return
	}
	g, err := s.board.PostGig(r.Context(), in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	switch {
	case q.Get("relevant") == "1" || q.Get("relevant") == "true":
		writeJSON(w, http.StatusOK, nonNil(s.board.RelevantApplications(ctx)))
	case q.Get("applicant") != "":
		writeJSON(w, http.StatusOK, nonNil(s.board.ApplicationsFor(ctx, q.Get("applicant"))))
	default:
		writeJSON(w, http.StatusOK, nonNil(s.board.Applications(ctx)))
	}
}

func nonNil(apps []gig.Application) []gig.Application {
	if apps == nil {
		return []gig.Application{}
	}
	return apps
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var in board.ApplyInput
	if !readJSON(w, r, &in) {
		return
	}
	app, err := s.board.Apply(r.Context(), in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	app, err := s.board.Accept(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	app, err := s.board.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type statusRequest struct {
	Status gig.ApplicationStatus `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !readJSON(w, r, &req) {
		return
	}
	app, err := s.board.UpdateApplicationStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type courseBody struct {
	CourseID *string `json:"courseId"`
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, courseBody{CourseID: s.board.Collections().CurrentCourseID.Read(r.Context())})
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req courseBody
	if !readJSON(w, r, &req) {
		return
	}
	if req.CourseID == nil {
		s.writeErr(w, r, errors.NewInvalidRequestError("courseId is required"))
		return
	}
	if err := s.board.Enroll(r.Context(), *req.CourseID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.handleGetCourse(w, r)
}

func (s *Server) handleDropCourse(w http.ResponseWriter, r *http.Request) {
	s.board.DropCourse(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"show": s.board.ShouldShowGuide(r.Context())})
}

func (s *Server) handleGuideShown(w http.ResponseWriter, r *http.Request) {
	s.board.MarkGuideShown(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.EmployerSummary(r.Context()))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List(r.Context()))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Profile(r.Context()))
}

// publicQuestion hides the correct answer; scoring happens on submit
type publicQuestion struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

type publicQuiz struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	SkillTag  string           `json:"skillTag,omitempty"`
	Questions []publicQuestion `json:"questions"`
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.catalog.StartQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out := publicQuiz{ID: quiz.ID, Title: quiz.Title, SkillTag: quiz.SkillTag, Questions: make([]publicQuestion, len(quiz.Questions))}
	for i, q := range quiz.Questions {
		out.Questions[i] = publicQuestion{Prompt: q.Prompt, Options: q.Options}
	}
	writeJSON(w, http.StatusOK, out)
}

type submitRequest struct {
	Answers []int `json:"answers"`
}

type submitResponse struct {
	Result unlock.Result `json:"result"`
	State  unlock.State  `json:"state"`
	Action unlock.Action `json:"action"`
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !readJSON(w, r, &req) {
		return
	}
	gigID := r.PathValue("id")
	result, state, err := s.catalog.SubmitQuiz(r.Context(), gigID, req.Answers)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Result: result, State: state, Action: s.catalog.Gate().Action(gigID)})
}

func (s *Server) handleCatalogApply(w http.ResponseWriter, r *http.Request) {
	var in board.ApplyInput
	if !readJSON(w, r, &in) {
		return
	}
	app, err := s.catalog.Apply(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}
