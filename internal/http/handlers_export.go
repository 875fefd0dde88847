package http

import (
	"bytes"
	"fmt"
	"net/http"

	"ricavi/internal/export"
	"ricavi/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	p := ParsePeriodParams(r.URL.Query(), "", s.currentPeriod())
	view, err := s.svc.Month(r.Context(), p)
	if err != nil {
		s.writeTextError(w, r, err, log.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.Rows(view.Summary, view.Raw)); err != nil {
		s.writeTextError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(p.Key(), "csv"))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	p := ParsePeriodParams(r.URL.Query(), "", s.currentPeriod())
	view, err := s.svc.Month(r.Context(), p)
	if err != nil {
		s.writeTextError(w, r, err, log.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, p, view.Summary, view.Raw); err != nil {
		s.writeTextError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(p.Key(), "xlsx"))
	_, _ = buf.WriteTo(w)
}

func attachment(key, ext string) string {
	return fmt.Sprintf(`attachment; filename="ricavi-%s.%s"`, key, ext)
}
