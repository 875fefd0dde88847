package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"ricavi/internal/core"
	"ricavi/internal/log"
)

// handleIndex renders the daily entry table and the month summary.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	p := ParsePeriodParams(r.URL.Query(), "", s.currentPeriod())
	view, err := s.svc.Month(r.Context(), p)
	if err != nil {
		s.writeTextError(w, r, err, log.OpLoad)
		return
	}

	s.render(w, r, "index.html", newMonthPage(view, s.svc.Rooms()))
}

// handleCompare renders two months side by side. The second month defaults
// to the month before the first.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	a, b := s.comparePeriods(r.URL.Query())
	cmp, err := s.svc.Compare(r.Context(), a, b)
	if err != nil {
		s.writeTextError(w, r, err, log.OpCompare)
		return
	}

	s.render(w, r, "compare.html", newComparePage(a, b, cmp))
}

// handleFormCell stores a cell posted by the entry form and redirects back
// to the month.
func (s *Server) handleFormCell(w http.ResponseWriter, r *http.Request) {
	params, err := ParseCellParams(NewRequestBodyParser(r))
	if err != nil {
		s.writeTextError(w, r, err, log.OpSave)
		return
	}
	view, err := s.svc.UpdateCell(r.Context(), params.Period, params.Day, params.Room, params.Raw)
	if err != nil {
		s.writeTextError(w, r, err, log.OpSave)
		return
	}
	s.events.LogCellUpdated(r.Context(), params.Period.Key(), params.Day, params.Room,
		view.Summary.MonthlyTotal, view.Summary.TotalOvernightStays)

	q := url.Values{}
	q.Set("year", fmt.Sprint(params.Period.Year))
	q.Set("month", fmt.Sprint(int(params.Period.Month)))
	http.Redirect(w, r, fmt.Sprintf("/?%s#day-%d", q.Encode(), params.Day), http.StatusSeeOther)
}

type summaryResponse struct {
	Period  string            `json:"period"`
	Summary core.MonthSummary `json:"summary"`
}

type compareResponse struct {
	Primary      summaryResponse `json:"primary"`
	Other        summaryResponse `json:"other"`
	TotalDelta   int64           `json:"total_delta"`
	AverageDelta int64           `json:"average_delta"`
}

type cellResponse struct {
	Period string            `json:"period"`
	Day    int               `json:"day"`
	Room   string            `json:"room,omitempty"`
	Raw    string            `json:"raw"`
	Cell   core.CellResult   `json:"cell"`
	Month  core.MonthSummary `json:"month"`
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	p := ParsePeriodParams(r.URL.Query(), "", s.currentPeriod())
	sum, err := s.svc.Summary(r.Context(), p)
	if err != nil {
		s.writeJSONError(w, r, err, log.OpSummarize)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, summaryResponse{Period: p.Key(), Summary: sum})
}

func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	a, b := s.comparePeriods(r.URL.Query())
	cmp, err := s.svc.Compare(r.Context(), a, b)
	if err != nil {
		s.writeJSONError(w, r, err, log.OpCompare)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, compareResponse{
		Primary:      summaryResponse{Period: a.Key(), Summary: cmp.Primary},
		Other:        summaryResponse{Period: b.Key(), Summary: cmp.Other},
		TotalDelta:   cmp.Primary.MonthlyTotal - cmp.Other.MonthlyTotal,
		AverageDelta: cmp.Primary.AverageDailyRevenue - cmp.Other.AverageDailyRevenue,
	})
}

// handleAPICell stores one cell and answers with the parsed cell and the
// new month summary.
func (s *Server) handleAPICell(w http.ResponseWriter, r *http.Request) {
	params, err := ParseCellParams(NewRequestBodyParser(r))
	if err != nil {
		s.writeJSONError(w, r, err, log.OpSave)
		return
	}
	view, err := s.svc.UpdateCell(r.Context(), params.Period, params.Day, params.Room, params.Raw)
	if err != nil {
		s.writeJSONError(w, r, err, log.OpSave)
		return
	}
	s.events.LogCellUpdated(r.Context(), params.Period.Key(), params.Day, params.Room,
		view.Summary.MonthlyTotal, view.Summary.TotalOvernightStays)

	stored := view.Raw.Get(params.Day, params.Room)
	writeJSON(r.Context(), w, http.StatusOK, cellResponse{
		Period: params.Period.Key(),
		Day:    params.Day,
		Room:   params.Room,
		Raw:    stored,
		Cell:   core.NewParser(s.svc.Policy()).Parse(stored),
		Month:  view.Summary,
	})
}

func (s *Server) comparePeriods(q url.Values) (core.Period, core.Period) {
	a := ParsePeriodParams(q, "", s.currentPeriod())
	def := a.Prev()
	if a.Validate() != nil {
		def = s.currentPeriod()
	}
	return a, ParsePeriodParams(q, "other_", def)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
