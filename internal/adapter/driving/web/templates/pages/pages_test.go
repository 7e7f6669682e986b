package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/installtrack/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestCartography_EscapesAndLinks(t *testing.T) {
	html := render(t, Cartography(vm.CartographyPageViewModel{
		Categories: []vm.Option{{Value: "", Label: "All"}, {Value: "APP", Label: "Application", Selected: true}},
		Contexts: []vm.ContextViewModel{{
			Name: "Application",
			Lots: []vm.CartographyLotViewModel{{
				Name: "<core>", Version: "1.0", Status: "Delivered", Mantis: "M-1", DetailPath: "/app/installations/M-1",
			}},
		}},
		ExportPath: "/api/v1/reports/cartography?category=APP",
	}))

	assert.Contains(t, html, `<option value="APP" selected>Application</option>`)
	assert.Contains(t, html, "<td>&lt;core&gt;</td><td>1.0</td>")
	assert.Contains(t, html, `<a href="/app/installations/M-1">M-1</a>`)
	assert.Contains(t, html, "category=APP&amp;format=xlsx")
	assert.NotContains(t, html, "No delivered lots")
}

func TestCartography_Empty(t *testing.T) {
	html := render(t, Cartography(vm.CartographyPageViewModel{ExportPath: "/api/v1/reports/cartography"}))

	assert.Contains(t, html, "No delivered lots match this filter.")
	assert.Contains(t, html, "/api/v1/reports/cartography?format=xlsx")
	assert.NotContains(t, html, "<table>")
}

func TestDelays_LateTicketsSeparated(t *testing.T) {
	html := render(t, Delays(vm.DelayPageViewModel{
		Locale: "fr_FR",
		Months: []vm.DelayMonthViewModel{{
			Label: "mars 2025", OK: 1, KO: 2, OnTimeRate: "33%",
			Late: []vm.MantisLinkViewModel{
				{Mantis: "M-2", DetailPath: "/app/installations/M-2"},
				{Mantis: "M-3", DetailPath: "/app/installations/M-3"},
			},
		}},
		TotalOK: 1,
		TotalKO: 2,
	}))

	assert.Contains(t, html, `<td class="ok">1</td><td class="ko">2</td><td>33%</td>`)
	assert.Contains(t, html, `M-2</a>, <a href="/app/installations/M-3">`)
	assert.Contains(t, html, `<th class="ko">2</th>`)
	assert.Contains(t, html, `name="locale" value="fr_FR"`)
}

func TestInstallationDetail_RawCommentaryAndForms(t *testing.T) {
	html := render(t, InstallationDetail(vm.InstallationDetailViewModel{
		Mantis:         "M-1",
		Priority:       2,
		KnownLots:      3,
		NewLots:        1,
		NewVersions:    2,
		CommentaryHTML: "<p><strong>ok</strong></p>",
		Statuses:       []vm.Option{{Value: "delivered", Label: "Delivered", Selected: true}},
		AdvanceURL:     "/app/installations/M-1/advance",
		AttachLotURL:   "/app/installations/M-1/lots",
		CSRFToken:      "tok",
	}))

	assert.Contains(t, html, "<h1>Mantis M-1</h1>")
	assert.Contains(t, html, "<tr><th>Priority</th><td>2</td></tr>")
	assert.Contains(t, html, "3 known, 1 new, 2 new versions")
	assert.Contains(t, html, `<section class="commentary"><p><strong>ok</strong></p></section>`)
	assert.Contains(t, html, `action="/app/installations/M-1/advance"`)
	assert.Equal(t, 2, bytes.Count([]byte(html), []byte(`name="csrf_token" value="tok"`)))
	assert.Contains(t, html, "No lots attached.")
}

func TestInstallations_Empty(t *testing.T) {
	assert.Contains(t, render(t, Installations(nil)), "No installations yet.")
}
