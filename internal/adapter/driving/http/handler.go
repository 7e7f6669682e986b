package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/installtrack/internal/adapter/driven/export"
	"github.com/ericfisherdev/installtrack/internal/application"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Report output formats accepted by the format query parameter.
const (
	formatJSON = "json"
	formatXLSX = "xlsx"
	formatCSV  = "csv"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	reportSvc     *application.ReportService
	installSvc    *application.InstallationService
	categoryStore driven.CategoryStore
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	reportSvc *application.ReportService,
	installSvc *application.InstallationService,
	categoryStore driven.CategoryStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		reportSvc:     reportSvc,
		installSvc:    installSvc,
		categoryStore: categoryStore,
		logger:        logger,
	}
}

// RegisterRoutes registers the API routes on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/installations", h.ListInstallations)
	mux.HandleFunc("POST /api/v1/installations", h.CreateInstallation)
	mux.HandleFunc("GET /api/v1/installations/{mantis}", h.GetInstallation)
	mux.HandleFunc("PATCH /api/v1/installations/{mantis}", h.UpdateInstallation)
	mux.HandleFunc("POST /api/v1/installations/{mantis}/lots", h.AttachLot)
	mux.HandleFunc("GET /api/v1/reports/cartography", h.Cartography)
	mux.HandleFunc("GET /api/v1/reports/delays", h.Delays)
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCategories returns the category reference table.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, CategoryResponse{Code: string(c.Code), Name: c.Name})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListInstallations returns the installation export, optionally filtered by
// Mantis id and a comma-separated status list.
func (h *Handler) ListInstallations(w http.ResponseWriter, r *http.Request) {
	q := model.ExportQuery{
		Mantis:   strings.TrimSpace(r.URL.Query().Get("mantis")),
		Statuses: parseStatuses(r.URL.Query().Get("status")),
	}

	installs, err := h.reportSvc.Installations(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "failed to export installations")
		return
	}

	writeJSON(w, http.StatusOK, installs)
}

// GetInstallation returns a single installation with its attached lots.
func (h *Handler) GetInstallation(w http.ResponseWriter, r *http.Request) {
	mantis := r.PathValue("mantis")

	inst, err := h.installSvc.Get(r.Context(), mantis)
	if err != nil {
		h.writeServiceError(w, err, "failed to get installation", "mantis", mantis)
		return
	}

	lots, err := h.installSvc.Lots(r.Context(), mantis)
	if err != nil {
		h.writeServiceError(w, err, "failed to list lots", "mantis", mantis)
		return
	}

	writeJSON(w, http.StatusOK, toInstallationResponse(*inst, lots))
}

// CreateInstallation stores a new installation from the JSON request body.
func (h *Handler) CreateInstallation(w http.ResponseWriter, r *http.Request) {
	var req CreateInstallationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date: expected YYYY-MM-DD")
		return
	}
	desired, err := parseDate(req.DesiredDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid desired_date: expected YYYY-MM-DD")
		return
	}

	inst, err := h.installSvc.Create(r.Context(), model.Installation{
		Mantis:      req.Mantis,
		Description: req.Description,
		Requester:   req.User,
		Priority:    req.Priority,
		Status:      model.Status(req.Status),
		Category:    model.CategoryCode(strings.ToUpper(req.Category)),
		StartDate:   start,
		DesiredDate: desired,
		Commentary:  req.Commentary,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create installation", "mantis", req.Mantis)
		return
	}

	writeJSON(w, http.StatusCreated, toInstallationResponse(*inst, nil))
}

// UpdateInstallation advances the status and optionally the delivery date of
// an installation.
func (h *Handler) UpdateInstallation(w http.ResponseWriter, r *http.Request) {
	mantis := r.PathValue("mantis")

	var req UpdateInstallationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delivered, err := parseDate(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delivery_date: expected YYYY-MM-DD")
		return
	}

	if err := h.installSvc.Advance(r.Context(), mantis, model.Status(req.Status), delivered); err != nil {
		h.writeServiceError(w, err, "failed to update installation", "mantis", mantis)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AttachLot records a lot version delivered by an installation.
func (h *Handler) AttachLot(w http.ResponseWriter, r *http.Request) {
	mantis := r.PathValue("mantis")

	var req AttachLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.installSvc.AttachLot(r.Context(), mantis, req.Name, req.Version, req.ArtefactNumber)
	if err != nil {
		h.writeServiceError(w, err, "failed to attach lot", "mantis", mantis, "lot", req.Name)
		return
	}

	writeJSON(w, http.StatusCreated, toLotVersionResponse(*record))
}

// Cartography returns the lot cartography as JSON, xlsx or csv.
func (h *Handler) Cartography(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	q := model.CartographyQuery{
		Statuses: parseStatuses(r.URL.Query().Get("status")),
		Category: model.CategoryCode(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("category")))),
	}

	carto, err := h.reportSvc.Cartography(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "failed to build cartography")
		return
	}

	if format == formatJSON {
		writeJSON(w, http.StatusOK, carto)
		return
	}
	h.writeTable(w, format, export.CartographyTable(carto))
}

// Delays returns the monthly delivery-delay statistics as JSON, xlsx or csv.
func (h *Handler) Delays(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: expected YYYY-MM-DD")
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid range: to is before from")
		return
	}

	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale != "" && !application.IsSupportedLocale(locale) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported locale %q", locale))
		return
	}

	q := model.DelayQuery{
		Statuses: parseStatuses(r.URL.Query().Get("status")),
		From:     from,
		To:       to,
	}

	buckets, err := h.reportSvc.DelayStats(r.Context(), q, locale)
	if err != nil {
		h.writeServiceError(w, err, "failed to compute delay statistics")
		return
	}

	if format == formatJSON {
		writeJSON(w, http.StatusOK, buckets)
		return
	}
	h.writeTable(w, format, export.DelayTable(buckets))
}

// writeTable renders a report table as an xlsx attachment or a csv document.
// The output is buffered so a rendering failure still yields a clean 500.
func (h *Handler) writeTable(w http.ResponseWriter, format string, table export.Table) {
	var buf bytes.Buffer
	var err error
	contentType := contentTypeCSV
	if format == formatXLSX {
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, table)
	} else {
		err = export.WriteCSV(&buf, table)
	}
	if err != nil {
		h.logger.Error("failed to render report", "format", format, "table", table.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.Name+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeServiceError maps application and port errors to HTTP responses.
// Unrecognized errors are logged and reported as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrUnknownCategory),
		errors.Is(err, application.ErrInvalidInstallation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrInstallationNotFound):
		writeError(w, http.StatusNotFound, "installation not found")
	case errors.Is(err, driven.ErrInstallationExists):
		writeError(w, http.StatusConflict, "installation already exists")
	default:
		h.logger.Error(msg, append(attrs, "error", err)...)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requestFormat reads the format query parameter, defaulting to JSON. An
// unsupported value writes a 400 and returns false.
func requestFormat(w http.ResponseWriter, r *http.Request) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "":
		return formatJSON, true
	case formatJSON, formatXLSX, formatCSV:
		return format, true
	default:
		writeError(w, http.StatusBadRequest, "invalid format: expected json, xlsx or csv")
		return "", false
	}
}

// parseStatuses splits a comma-separated status list, skipping blanks.
func parseStatuses(raw string) []model.Status {
	var statuses []model.Status
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			statuses = append(statuses, model.Status(part))
		}
	}
	return statuses
}

// parseDate parses a YYYY-MM-DD date. An empty string yields the zero time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, raw)
}
