package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/fieldsurvey/internal/photostore"
	"github.com/vbonduro/fieldsurvey/internal/service"
)

type surveyJSON struct {
	ID            int64  `json:"id"`
	SiteName      string `json:"site_name"`
	SiteAddress   string `json:"site_address,omitempty"`
	SurveyType    string `json:"survey_type,omitempty"`
	SurveyDate    string `json:"survey_date,omitempty"`
	InspectorName string `json:"inspector_name,omitempty"`
	Status        string `json:"status"`
	ReportURL     string `json:"report_url"`
	SamplesURL    string `json:"samples_url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.reports.ListSurveys(r.Context())
	if err != nil {
		http.Error(w, "failed to list surveys", http.StatusInternalServerError)
		s.logger.Error("list surveys failed", "error", err)
		return
	}

	out := make([]surveyJSON, 0, len(surveys))
	for _, sv := range surveys {
		item := surveyJSON{
			ID:            sv.ID,
			SiteName:      sv.SiteName,
			SiteAddress:   sv.SiteAddress,
			SurveyType:    sv.SurveyType,
			InspectorName: sv.InspectorName,
			Status:        sv.Status,
			ReportURL:     fmt.Sprintf("/surveys/%d/report", sv.ID),
			SamplesURL:    fmt.Sprintf("/surveys/%d/samples.xlsx", sv.ID),
		}
		if sv.SurveyDate != nil {
			item.SurveyDate = sv.SurveyDate.Format(time.DateOnly)
		}
		out = append(out, item)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Error("encode surveys failed", "error", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid survey id", http.StatusBadRequest)
		return
	}

	markup, filename, err := s.reports.RenderReport(r.Context(), surveyID, service.RenderOptions{GeneratedAt: s.now()})
	if err != nil {
		s.writeServiceError(w, r, "render report", surveyID, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(filename))
	_, _ = io.WriteString(w, markup)
}

func (s *Server) handleSampleWorkbook(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid survey id", http.StatusBadRequest)
		return
	}

	data, filename, err := s.reports.SampleWorkbook(r.Context(), surveyID)
	if err != nil {
		s.writeServiceError(w, r, "build sample workbook", surveyID, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Warn("photo lookup failed", "storage_key", key, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("failed to write photo response", "storage_key", key, "error", err)
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, action string, surveyID int64, err error) {
	if errors.Is(err, service.ErrSurveyNotFound) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, "failed to "+action, http.StatusInternalServerError)
	s.logger.Error(action+" failed", "survey_id", surveyID, "error", err)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("survey id must be positive")
	}
	return id, nil
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
