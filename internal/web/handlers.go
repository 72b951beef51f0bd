package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/ukaji3/sheetstats-go/internal/chart"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

const dateLayout = "2006-01-02"

type uploadResponse struct {
	Session  string   `json:"session"`
	Workbook string   `json:"workbook"`
	Layout   string   `json:"layout"`
	Sheets   []string `json:"sheets"`
	Series   []string `json:"series"`
}

type seriesResponse struct {
	Loaded bool     `json:"loaded"`
	Series []string `json:"series"`
}

type analyzeResponse struct {
	Series     []models.Series    `json:"series"`
	Comparison *models.Comparison `json:"comparison,omitempty"`
	Max        int                `json:"max"`
}

// analyzeRequest holds the query parameters shared by the analysis and chart endpoints.
type analyzeRequest struct {
	Series      []string `query:"series" validate:"required,min=1,max=20,dive,required"`
	From        string   `query:"from" validate:"required,datetime=2006-01-02"`
	To          string   `query:"to" validate:"required,datetime=2006-01-02"`
	Granularity string   `query:"granularity" validate:"oneof=day hour"`
	Overlay     bool     `query:"overlay"`
}

func (s *Server) parseAnalyzeRequest(r *http.Request) (analyzeRequest, models.Query, error) {
	values := r.URL.Query()
	req := analyzeRequest{
		Series:      values["series"],
		From:        values.Get("from"),
		To:          values.Get("to"),
		Granularity: values.Get("granularity"),
	}
	if req.Granularity == "" {
		req.Granularity = string(models.GranularityDay)
	}
	if raw := values.Get("overlay"); raw != "" {
		overlay, err := strconv.ParseBool(raw)
		if err != nil {
			return req, models.Query{}, InvalidRequest(fmt.Errorf("overlay: %w", err))
		}
		req.Overlay = overlay
	}

	if err := s.validate.Struct(req); err != nil {
		return req, models.Query{}, err
	}

	from, err := time.ParseInLocation(dateLayout, req.From, s.loc)
	if err != nil {
		return req, models.Query{}, InvalidRequest(err)
	}
	to, err := time.ParseInLocation(dateLayout, req.To, s.loc)
	if err != nil {
		return req, models.Query{}, InvalidRequest(err)
	}
	granularity, err := models.ParseGranularity(req.Granularity)
	if err != nil {
		return req, models.Query{}, InvalidRequest(err)
	}

	q := models.Query{
		Range:       models.DayRange(from, to),
		Granularity: granularity,
	}
	if n := timeline.Count(q); n > s.cfg.MaxBuckets {
		return req, models.Query{}, RangeTooLarge(n, s.cfg.MaxBuckets)
	}
	return req, q, nil
}

// analyze runs q for every requested series against the session workbook.
// Without a workbook each series comes back empty and loaded is false.
func (s *Server) analyze(r *http.Request, req analyzeRequest, q models.Query) (result []models.Series, loaded bool, err error) {
	sess, ok := s.sessions.Get(r)
	if ok {
		err = sess.Do(func(a *sheetstats.Analyzer) error {
			loaded = a.Loaded()
			if !loaded {
				return nil
			}
			var err error
			result, err = a.AnalyzeMany(req.Series, q)
			return err
		})
		if err != nil {
			return nil, loaded, err
		}
	}

	if !loaded {
		result = make([]models.Series, len(req.Series))
		for i, name := range req.Series {
			result[i] = models.Series{Name: name, DisplayName: name, Granularity: q.Granularity, Buckets: []models.Bucket{}}
		}
		return result, false, nil
	}

	s.metrics.analyses.WithLabelValues(string(q.Granularity)).Add(float64(len(result)))
	return result, true, nil
}

// handleUpload handles POST /api/workbook
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		s.metrics.uploads.WithLabelValues("too_large").Inc()
		s.renderError(w, r, PayloadTooLarge(s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.uploads.WithLabelValues("too_large").Inc()
			s.renderError(w, r, err)
			return
		}
		s.metrics.uploads.WithLabelValues("invalid").Inc()
		s.renderError(w, r, InvalidRequest(err))
		return
	}
	defer file.Close()

	wb, err := sheetstats.Load(file, header.Filename)
	if err != nil {
		s.metrics.uploads.WithLabelValues("invalid").Inc()
		s.renderError(w, r, err)
		return
	}

	sess, err := s.sessions.GetOrCreate(w, r)
	if err != nil {
		_ = wb.Close()
		s.renderError(w, r, err)
		return
	}

	names, err := sess.Load(wb)
	if err != nil {
		s.metrics.uploads.WithLabelValues("invalid").Inc()
		s.renderError(w, r, err)
		return
	}

	s.metrics.uploads.WithLabelValues("ok").Inc()
	s.logger.InfoContext(r.Context(), "workbook uploaded",
		slog.String("session", sess.ID),
		slog.String("workbook", wb.Name),
		slog.Int("series", len(names)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{
		Session:  sess.ID,
		Workbook: wb.Name,
		Layout:   string(s.opts.Layout),
		Sheets:   wb.SheetNames(),
		Series:   names,
	})
}

// handleSeries handles GET /api/series
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	resp := seriesResponse{Series: []string{}}
	if sess, ok := s.sessions.Get(r); ok {
		err := sess.Do(func(a *sheetstats.Analyzer) error {
			resp.Loaded = a.Loaded()
			names, err := a.SeriesNames()
			if err != nil {
				return err
			}
			resp.Series = names
			return nil
		})
		if err != nil {
			s.renderError(w, r, err)
			return
		}
	}
	render.JSON(w, r, resp)
}

// handleAnalyze handles GET /api/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, q, err := s.parseAnalyzeRequest(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	result, _, err := s.analyze(r, req, q)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	resp := analyzeResponse{
		Series: result,
		Max:    timeline.GlobalMax(result...),
	}
	if req.Overlay {
		cmp := timeline.Compare(result...)
		resp.Comparison = &cmp
	}
	render.JSON(w, r, resp)
}

// handleChartPNG handles GET /api/chart.png. The image shows the first
// requested series on the Y scale shared by all requested series.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	req, q, err := s.parseAnalyzeRequest(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	result, loaded, err := s.analyze(r, req, q)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if !loaded {
		s.renderError(w, r, NoWorkbook())
		return
	}

	data, err := chart.PNG(result[0], timeline.GlobalMax(result...))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleChartHTML handles GET /chart
func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	req, q, err := s.parseAnalyzeRequest(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	result, loaded, err := s.analyze(r, req, q)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if !loaded {
		s.renderError(w, r, NoWorkbook())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("%s to %s", req.From, req.To)
	if err := chart.HTML(w, result, chart.HTMLOptions{Title: title, Overlay: req.Overlay}); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to render chart page", slog.String("error", err.Error()))
	}
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Layout      string
		MaxUploadMB int64
		Today       string
	}{
		Layout:      string(s.opts.Layout),
		MaxUploadMB: s.cfg.MaxUploadBytes >> 20,
		Today:       time.Now().In(s.loc).Format(dateLayout),
	}
	if err := s.index.Execute(w, data); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to render index", slog.String("error", err.Error()))
	}
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
