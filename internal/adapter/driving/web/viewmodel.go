package web

import (
	"fmt"
	"net/url"
	"time"

	vm "github.com/ericfisherdev/installtrack/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// installationPath returns the detail page path of an installation.
func installationPath(mantis string) string {
	return "/app/installations/" + url.PathEscape(mantis)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

// toCartographyViewModel converts a cartography into per-context tables. The
// category select lists every known category with the active filter selected.
func toCartographyViewModel(c *model.Cartography, selected model.CategoryCode, categories []model.Category) vm.CartographyPageViewModel {
	page := vm.CartographyPageViewModel{
		Categories: []vm.Option{{Value: "", Label: "All categories", Selected: selected == ""}},
		Contexts:   []vm.ContextViewModel{},
		ExportPath: "/api/v1/reports/cartography",
	}
	if selected != "" {
		page.ExportPath += "?category=" + url.QueryEscape(string(selected))
	}

	for _, cat := range categories {
		page.Categories = append(page.Categories, vm.Option{
			Value:    string(cat.Code),
			Label:    cat.Name,
			Selected: cat.Code == selected,
		})
	}

	if c == nil {
		return page
	}
	for _, ctx := range c.Contexts {
		cv := vm.ContextViewModel{Name: ctx.Name, Lots: make([]vm.CartographyLotViewModel, 0, len(ctx.Lots))}
		for _, lot := range ctx.Lots {
			cv.Lots = append(cv.Lots, vm.CartographyLotViewModel{
				Name:         lot.Name,
				Version:      lot.Entry.Version,
				Category:     lot.Entry.Category,
				Status:       lot.Entry.Status,
				DeliveryDate: lot.Entry.DeliveryDate,
				Mantis:       lot.Entry.Mantis,
				DetailPath:   installationPath(lot.Entry.Mantis),
			})
		}
		page.Contexts = append(page.Contexts, cv)
	}
	return page
}

// toDelayViewModel converts delay buckets into table rows with on-time rates
// and overall totals.
func toDelayViewModel(buckets []model.DelayBucket, from, to time.Time, locale string) vm.DelayPageViewModel {
	page := vm.DelayPageViewModel{
		From:   formatDate(from),
		To:     formatDate(to),
		Locale: locale,
		Months: make([]vm.DelayMonthViewModel, 0, len(buckets)),
	}

	for _, b := range buckets {
		month := vm.DelayMonthViewModel{
			Label: b.Label,
			OK:    b.OK,
			KO:    b.KO,
			Late:  make([]vm.MantisLinkViewModel, 0, len(b.KOMantis)),
		}
		if total := b.OK + b.KO; total > 0 {
			month.OnTimeRate = fmt.Sprintf("%d%%", b.OK*100/total)
		}
		for _, m := range b.KOMantis {
			month.Late = append(month.Late, vm.MantisLinkViewModel{Mantis: m, DetailPath: installationPath(m)})
		}

		page.TotalOK += b.OK
		page.TotalKO += b.KO
		page.Months = append(page.Months, month)
	}
	return page
}

// toInstallationRows converts the installation export into list rows.
func toInstallationRows(exports []model.InstallationExport) []vm.InstallationRowViewModel {
	rows := make([]vm.InstallationRowViewModel, 0, len(exports))
	for _, e := range exports {
		rows = append(rows, vm.InstallationRowViewModel{
			Mantis:       e.Mantis,
			Description:  e.Description,
			User:         e.User,
			Status:       model.Status(e.Status).Label(),
			Category:     e.Category,
			DesiredDate:  deref(e.DesiredDate),
			DeliveryDate: deref(e.EndDate),
			LotCount:     len(e.Lots),
			DetailPath:   installationPath(e.Mantis),
		})
	}
	return rows
}

// toInstallationDetailViewModel converts an installation and its lots into
// the detail page model. The commentary is rendered from markdown.
func toInstallationDetailViewModel(inst model.Installation, lots []model.Lot, csrf string) vm.InstallationDetailViewModel {
	detail := vm.InstallationDetailViewModel{
		Mantis:         inst.Mantis,
		Description:    inst.Description,
		User:           inst.Requester,
		Priority:       inst.Priority,
		Status:         inst.Status.Label(),
		Category:       string(inst.Category),
		StartDate:      formatDate(inst.StartDate),
		DesiredDate:    formatDate(inst.DesiredDate),
		DeliveryDate:   formatDate(inst.DeliveryDate),
		CommentaryHTML: RenderMarkdown(inst.Commentary),
		KnownLots:      inst.Counters.KnownLots,
		NewVersions:    inst.Counters.NewVersions,
		NewLots:        inst.Counters.NewLots,
		Lots:           make([]vm.LotViewModel, 0, len(lots)),
		Statuses:       make([]vm.Option, 0, len(model.AllStatuses())),
		AdvanceURL:     installationPath(inst.Mantis) + "/advance",
		AttachLotURL:   installationPath(inst.Mantis) + "/lots",
		CSRFToken:      csrf,
	}

	for _, l := range lots {
		detail.Lots = append(detail.Lots, vm.LotViewModel{Name: l.Name, Version: l.Version})
	}
	for _, s := range model.AllStatuses() {
		detail.Statuses = append(detail.Statuses, vm.Option{
			Value:    string(s),
			Label:    s.Label(),
			Selected: s == inst.Status,
		})
	}
	return detail
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
