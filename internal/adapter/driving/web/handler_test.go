package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/installtrack/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/installtrack/internal/application"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

type webEnv struct {
	mux        *http.ServeMux
	installSvc *application.InstallationService
}

// setupWeb wires the web handler to a migrated SQLite database seeded with
// one late delivery (M-1) carrying a single lot.
func setupWeb(t *testing.T) *webEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.RunMigrations(db.Writer))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reportSvc := application.NewReportService(sqlite.NewReportRepo(db), "fr_FR")
	installSvc := application.NewInstallationService(sqlite.NewInstallationRepo(db), sqlite.NewLotRepo(db), logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(reportSvc, installSvc, sqlite.NewCategoryRepo(db), logger))

	_, err = installSvc.Create(ctx, model.Installation{
		Mantis:      "M-1",
		Description: "<script>alert(1)</script> rollout",
		Requester:   "ops",
		Category:    model.CategoryApplication,
		DesiredDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Commentary:  "**urgent** rollout",
	})
	require.NoError(t, err)
	_, err = installSvc.AttachLot(ctx, "M-1", "core", "1.0", nil)
	require.NoError(t, err)
	require.NoError(t, installSvc.Advance(ctx, "M-1", model.StatusDelivered, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)))

	return &webEnv{mux: mux, installSvc: installSvc}
}

func (e *webEnv) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (e *webEnv) postForm(target string, form url.Values, cookieToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookieToken != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookieToken})
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestCartographyPage(t *testing.T) {
	env := setupWeb(t)

	rec := env.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Application</h2>")
	assert.Contains(t, body, "<td>core</td><td>1.0</td>")
	assert.Contains(t, body, `href="/app/installations/M-1"`)
	assert.Contains(t, body, `<option value="APP">Application</option>`)
}

func TestCartographyPage_CategoryFilter(t *testing.T) {
	env := setupWeb(t)

	rec := env.get("/?category=batch")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No delivered lots match this filter.")
	assert.Contains(t, body, `<option value="BATCH" selected>`)
	assert.Contains(t, body, "/api/v1/reports/cartography?category=BATCH&amp;format=xlsx")

	rec = env.get("/?category=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelaysPage(t *testing.T) {
	env := setupWeb(t)

	tests := []struct {
		name      string
		target    string
		wantLabel string
	}{
		{name: "default locale", target: "/app/delays", wantLabel: "mars 2025"},
		{name: "explicit locale", target: "/app/delays?locale=en_US&from=2025-01-01", wantLabel: "March 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get(tt.target)

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "<td>"+tt.wantLabel+"</td>")
			assert.Contains(t, body, `<td class="ko">1</td>`)
			assert.Contains(t, body, `<td>0%</td>`)
			assert.Contains(t, body, `>M-1</a>`)
		})
	}
}

func TestDelaysPage_BadRequests(t *testing.T) {
	env := setupWeb(t)

	for _, target := range []string{"/app/delays?from=01-03-2025", "/app/delays?to=x", "/app/delays?locale=xx_XX"} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, env.get(target).Code)
		})
	}
}

func TestInstallationsPage(t *testing.T) {
	env := setupWeb(t)

	rec := env.get("/app/installations")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `>M-1</a>`)
	assert.Contains(t, body, "<td>Delivered</td>")
	assert.NotContains(t, body, "<script>")
}

func TestInstallationDetailPage(t *testing.T) {
	env := setupWeb(t)

	rec := env.get("/app/installations/M-1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Mantis M-1</h1>")
	assert.Contains(t, body, "<strong>urgent</strong>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "1 known, 1 new, 0 new versions")
	assert.Contains(t, body, `<option value="delivered" selected>`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, body, `name="csrf_token" value="`+cookies[0].Value+`"`)
}

func TestInstallationDetailPage_NotFound(t *testing.T) {
	env := setupWeb(t)

	assert.Equal(t, http.StatusNotFound, env.get("/app/installations/M-404").Code)
}

func TestAdvanceInstallation(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		form         url.Values
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "missing csrf cookie",
			target:     "/app/installations/M-1/advance",
			form:       url.Values{"csrf_token": {"tok"}, "status": {"validated_prod"}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "mismatched csrf token",
			target:     "/app/installations/M-1/advance",
			form:       url.Values{"csrf_token": {"other"}, "status": {"validated_prod"}},
			cookie:     "tok",
			wantStatus: http.StatusForbidden,
		},
		{
			name:         "valid",
			target:       "/app/installations/M-1/advance",
			form:         url.Values{"csrf_token": {"tok"}, "status": {"validated_prod"}, "delivery_date": {"2025-03-14"}},
			cookie:       "tok",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/app/installations/M-1",
		},
		{
			name:         "invalid status shows error",
			target:       "/app/installations/M-1/advance",
			form:         url.Values{"csrf_token": {"tok"}, "status": {"done"}},
			cookie:       "tok",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/app/installations/M-1?error=" + url.QueryEscape(`invalid status: "done"`),
		},
		{
			name:         "invalid date shows error",
			target:       "/app/installations/M-1/advance",
			form:         url.Values{"csrf_token": {"tok"}, "status": {"delivered"}, "delivery_date": {"soon"}},
			cookie:       "tok",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/app/installations/M-1?error=invalid+delivery+date",
		},
		{
			name:       "unknown installation",
			target:     "/app/installations/M-404/advance",
			form:       url.Values{"csrf_token": {"tok"}, "status": {"delivered"}},
			cookie:     "tok",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupWeb(t)

			rec := env.postForm(tt.target, tt.form, tt.cookie)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAdvanceInstallation_Persists(t *testing.T) {
	env := setupWeb(t)

	rec := env.postForm("/app/installations/M-1/advance",
		url.Values{"csrf_token": {"tok"}, "status": {"validated_prod"}, "delivery_date": {"2025-03-14"}}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	inst, err := env.installSvc.Get(context.Background(), "M-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidatedProd, inst.Status)
	assert.Equal(t, "2025-03-14", inst.DeliveryDate.Format(model.DateLayout))
}

func TestAttachLotForm(t *testing.T) {
	env := setupWeb(t)

	rec := env.postForm("/app/installations/M-1/lots",
		url.Values{"csrf_token": {"tok"}, "name": {"batch"}, "version": {"2.0"}, "artefact_number": {"7"}}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app/installations/M-1", rec.Header().Get("Location"))

	inst, err := env.installSvc.Get(context.Background(), "M-1")
	require.NoError(t, err)
	assert.Equal(t, model.LotCounters{KnownLots: 2, NewVersions: 0, NewLots: 2}, inst.Counters)

	rec = env.postForm("/app/installations/M-1/lots",
		url.Values{"csrf_token": {"tok"}, "name": {"batch"}, "version": {"2.1"}, "artefact_number": {"seven"}}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=invalid+artefact+number")

	rec = env.postForm("/app/installations/M-1/lots",
		url.Values{"csrf_token": {"tok"}, "name": {""}, "version": {"2.1"}}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
}

func TestStaticAssets(t *testing.T) {
	env := setupWeb(t)

	rec := env.get("/static/app.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--ko")
}
