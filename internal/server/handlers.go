package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	dsio "github.com/matzehuels/chartdeck/pkg/io"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// chartRequest selects a dataset and a chart. The dataset is either sent
// inline or named by the ID of an earlier upload in the same session;
// neither yields the empty state.
type chartRequest struct {
	pipeline.Options
	Dataset  *dataset.Dataset `json:"dataset,omitempty"`
	UploadID string           `json:"uploadId,omitempty"`
}

type inspectResponse struct {
	Schema  dataset.Schema  `json:"schema"`
	Axes    axis.Selection  `json:"axes"`
	Summary dataset.Summary `json:"summary"`
	Preview dataset.Preview `json:"preview"`
}

type insightRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	d, err := dsio.ReadJSON(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schema := dataset.Inspect(d)
	writeJSON(w, http.StatusOK, inspectResponse{
		Schema:  schema,
		Axes:    axis.SelectDefaults(schema, axis.Selection{}),
		Summary: dataset.Summarize(d),
		Preview: dataset.NewPreview(d, dataset.PreviewRows, dataset.PreviewColumns),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, d, ok := s.readChartRequest(w, r)
	if !ok {
		return
	}
	res, err := s.runner(r.Context(), sessionID(r.Context())).Build(r.Context(), d, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatPNG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, d, ok := s.readChartRequest(w, r)
	if !ok {
		return
	}
	opts := req.Options
	opts.Formats = []string{format}

	res, err := s.runner(r.Context(), sessionID(r.Context())).Execute(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	art := res.Artifacts[format]
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", art.ContentDisposition())
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dsio.Stamp(d)

	id := sessionID(ctx)
	var up session.Upload
	if _, err := s.sessions.Update(ctx, id, func(st *session.State) error {
		up = st.RecordUpload(d)
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.SaveDataset(ctx, id, up.ID, d); err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.notifier != nil {
		e := notify.UploadRecorded(up.Name, up.Rows, up.Columns, up.SizeKB)
		_ = notify.Safe(s.notifier, loggerFrom(ctx, s.logger)).Notify(ctx, e)
	}
	writeJSON(w, http.StatusCreated, up)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Load(r.Context(), sessionID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Uploads)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	d, err := s.sessions.LoadDataset(r.Context(), sessionID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, uploadID := sessionID(ctx), chi.URLParam(r, "id")

	_, err := s.sessions.Update(ctx, id, func(st *session.State) error {
		if !st.DeleteUpload(uploadID) {
			return errors.New(errors.ErrCodeUploadNotFound, "upload %q not found", uploadID)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.DeleteDataset(ctx, id, uploadID); err != nil {
		loggerFrom(ctx, s.logger).Warn("delete upload rows", "upload", uploadID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode insight"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "name is required"))
		return
	}

	ctx := r.Context()
	e := notify.InsightLogged(req.Name, req.Description)
	n := notify.Safe(s.notifierFor(sessionID(ctx)), loggerFrom(ctx, s.logger))
	_ = n.Notify(ctx, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	src := s.stats
	if src == nil {
		src = session.NewTracker(s.sessions, sessionID(ctx))
	}
	stats, err := src.Stats(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stats.RecentActivity == nil {
		stats.RecentActivity = []notify.Event{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// Helpers
// =============================================================================

// readChartRequest decodes a chart request and resolves its dataset. It
// writes the error reply itself and reports false on failure.
func (s *Server) readChartRequest(w http.ResponseWriter, r *http.Request) (chartRequest, *dataset.Dataset, bool) {
	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode chart request"))
		return req, nil, false
	}
	if req.Options.Width == 0 {
		req.Options.Width = s.defaults.Width
	}
	if req.Options.Height == 0 {
		req.Options.Height = s.defaults.Height
	}
	if req.Options.Scale == 0 {
		req.Options.Scale = s.defaults.Scale
	}
	if req.Options.Policy == "" {
		req.Options.Policy = s.defaults.Policy
	}

	d := req.Dataset
	if req.UploadID != "" {
		var err error
		d, err = s.sessions.LoadDataset(r.Context(), sessionID(r.Context()), req.UploadID)
		if err != nil {
			s.writeError(w, r, err)
			return req, nil, false
		}
	}
	return req, d, true
}

// readUpload reads an uploaded dataset: a multipart "file" field in any
// supported spreadsheet format, or a JSON dataset body.
func (s *Server) readUpload(r *http.Request) (*dataset.Dataset, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return dsio.ReadJSON(r.Body)
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
	}
	defer f.Close()
	return dsio.Read(f, hdr.Filename)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
