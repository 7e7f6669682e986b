// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/installtrack/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/installtrack/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/installtrack/internal/application"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// Cartography renders the lot cartography page, optionally filtered by category.
func (h *Handler) Cartography(w http.ResponseWriter, r *http.Request) {
	category := model.CategoryCode(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("category"))))

	carto, err := h.reportSvc.Cartography(r.Context(), model.CartographyQuery{Category: category})
	if errors.Is(err, application.ErrUnknownCategory) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("failed to build cartography", "category", category, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// The filter select is optional chrome; render without it on failure.
	categories, err := h.categoryStore.ListAll(r.Context())
	if err != nil {
		h.logger.Warn("failed to list categories", "error", err)
	}

	h.render(w, r, "Cartography", pages.Cartography(toCartographyViewModel(carto, category, categories)))
}

// Delays renders the monthly delivery-delay statistics page.
func (h *Handler) Delays(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}

	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale == "" {
		locale = h.reportSvc.Locale()
	}
	if !application.IsSupportedLocale(locale) {
		http.Error(w, "unsupported locale", http.StatusBadRequest)
		return
	}

	buckets, err := h.reportSvc.DelayStats(r.Context(), model.DelayQuery{From: from, To: to}, locale)
	if err != nil {
		h.logger.Error("failed to compute delay statistics", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "Delays", pages.Delays(toDelayViewModel(buckets, from, to, locale)))
}

// Installations renders the list of all installations.
func (h *Handler) Installations(w http.ResponseWriter, r *http.Request) {
	exports, err := h.reportSvc.Installations(r.Context(), model.ExportQuery{})
	if err != nil {
		h.logger.Error("failed to list installations", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "Installations", pages.Installations(toInstallationRows(exports)))
}

// InstallationDetail renders one installation with its lots and forms.
func (h *Handler) InstallationDetail(w http.ResponseWriter, r *http.Request) {
	mantis := r.PathValue("mantis")

	inst, err := h.installSvc.Get(r.Context(), mantis)
	if errors.Is(err, driven.ErrInstallationNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to get installation", "mantis", mantis, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	lots, err := h.installSvc.Lots(r.Context(), mantis)
	if err != nil {
		h.logger.Error("failed to list lots", "mantis", mantis, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detail := toInstallationDetailViewModel(*inst, lots, csrfToken(w, r))
	detail.FlashError = r.URL.Query().Get("error")

	h.render(w, r, "Mantis "+mantis, pages.InstallationDetail(detail))
}

// AdvanceInstallation handles the progress form of the detail page.
func (h *Handler) AdvanceInstallation(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}
	mantis := r.PathValue("mantis")

	delivered, err := parseDate(r.FormValue("delivery_date"))
	if err != nil {
		redirectWithError(w, r, mantis, "invalid delivery date")
		return
	}

	err = h.installSvc.Advance(r.Context(), mantis, model.Status(r.FormValue("status")), delivered)
	h.afterWrite(w, r, mantis, err)
}

// AttachLot handles the attach lot form of the detail page.
func (h *Handler) AttachLot(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}
	mantis := r.PathValue("mantis")

	var artefact *int
	if raw := strings.TrimSpace(r.FormValue("artefact_number")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			redirectWithError(w, r, mantis, "invalid artefact number")
			return
		}
		artefact = &n
	}

	_, err := h.installSvc.AttachLot(r.Context(), mantis, r.FormValue("name"), r.FormValue("version"), artefact)
	h.afterWrite(w, r, mantis, err)
}

// afterWrite redirects back to the detail page. Validation errors are shown
// on the page; other failures end the request.
func (h *Handler) afterWrite(w http.ResponseWriter, r *http.Request, mantis string, err error) {
	switch {
	case err == nil:
		http.Redirect(w, r, installationPath(mantis), http.StatusSeeOther)
	case errors.Is(err, driven.ErrInstallationNotFound):
		http.NotFound(w, r)
	case errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrUnknownCategory),
		errors.Is(err, application.ErrInvalidInstallation):
		redirectWithError(w, r, mantis, err.Error())
	default:
		h.logger.Error("failed to update installation", "mantis", mantis, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, mantis, msg string) {
	http.Redirect(w, r, installationPath(mantis)+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// render wraps component in the layout and writes it.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, component templ.Component) {
	layout := templates.Layout(title, component)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// parseDate parses a YYYY-MM-DD date. An empty string yields the zero time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, raw)
}
