package http

import (
	"fmt"
	"net/http"

	"joblog/internal/core"
	"joblog/internal/log"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	order, err := parseListOrder(r.URL.Query().Get("sort"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var jobs []core.JobRecord
	if order == insertionOrder {
		jobs = s.jobs.List()
	} else {
		jobs = s.jobs.Sorted(core.SortOrder(order))
	}

	out := jobListView{
		Revision: s.jobs.Revision(),
		Order:    string(order),
		Jobs:     make([]jobView, 0, len(jobs)),
	}
	for _, j := range jobs {
		out.Jobs = append(out.Jobs, newJobView(j))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		StoreErrorResponse(r, log.OpRead, err).Write(w)
		return
	}
	NewResponse().JSON(jobResultView{Revision: s.jobs.Revision(), Job: newJobView(job)}).Write(w)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	draft, ok := parseDraft(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.Create(r.Context(), draft)
	if err != nil {
		StoreErrorResponse(r, log.OpCreate, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/jobs/%s", job.ID)).
		JSON(jobResultView{Revision: s.jobs.Revision(), Job: newJobView(job)}).
		Write(w)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	draft, ok := parseDraft(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.Update(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		StoreErrorResponse(r, log.OpUpdate, err).Write(w)
		return
	}
	NewResponse().JSON(jobResultView{Revision: s.jobs.Revision(), Job: newJobView(job)}).Write(w)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Delete(r.Context(), r.PathValue("id")); err != nil {
		StoreErrorResponse(r, log.OpDelete, err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	order := s.defaultOrder
	if v := query.Get("order"); v != "" {
		o, err := core.ParseSortOrder(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		order = o
	}
	asOf, err := ParseAsOf(query, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	rev, report := s.weeklyReport(r, order, asOf)
	NewResponse().JSON(newWeeklyReportView(rev, report)).Write(w)
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	asOf, err := ParseAsOf(query, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	params, err := ParseMonthParams(query, asOf)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ov := core.MonthlyOverview(s.jobs.List(), params.Year, params.Month)
	NewResponse().JSON(newMonthView(ov)).Write(w)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	v := newStatusView(s.jobs.Status())
	v.RateLimitHits = s.metrics.rateLimited()
	NewResponse().JSON(v).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func parseDraft(w http.ResponseWriter, r *http.Request) (core.Draft, bool) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body", log.FieldError, err)
		BadRequestError("malformed request body").Write(w)
		return core.Draft{}, false
	}
	return parser.Draft(), true
}
