package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CategoryResponse is the JSON representation of a category.
type CategoryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LotResponse is the JSON representation of a lot attached to an installation.
type LotResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InstallationResponse is the JSON representation of a single installation.
type InstallationResponse struct {
	ID           int64         `json:"id"`
	Mantis       string        `json:"mantis"`
	Description  string        `json:"description"`
	User         string        `json:"user"`
	Priority     int           `json:"priority"`
	Status       string        `json:"status"`
	StatusLabel  string        `json:"status_label"`
	Category     string        `json:"category"`
	StartDate    string        `json:"start_date,omitempty"`
	DesiredDate  string        `json:"desired_date,omitempty"`
	DeliveryDate string        `json:"delivery_date,omitempty"`
	Commentary   string        `json:"commentary"`
	KnownLots    int           `json:"known_lots"`
	NewVersions  int           `json:"new_versions"`
	NewLots      int           `json:"new_lots"`
	Lots         []LotResponse `json:"lots"`
}

// CreateInstallationRequest is the JSON body for the create installation endpoint.
// Dates use the YYYY-MM-DD form.
type CreateInstallationRequest struct {
	Mantis      string `json:"mantis"`
	Description string `json:"description"`
	User        string `json:"user"`
	Priority    int    `json:"priority"`
	Status      string `json:"status"`
	Category    string `json:"category"`
	StartDate   string `json:"start_date"`
	DesiredDate string `json:"desired_date"`
	Commentary  string `json:"commentary"`
}

// UpdateInstallationRequest is the JSON body for the progress update endpoint.
type UpdateInstallationRequest struct {
	Status       string `json:"status"`
	DeliveryDate string `json:"delivery_date"`
}

// AttachLotRequest is the JSON body for the attach lot endpoint.
type AttachLotRequest struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	ArtefactNumber *int   `json:"artefact_number"`
}

// LotVersionResponse is the JSON representation of a recorded lot version.
type LotVersionResponse struct {
	ID             int64  `json:"id"`
	LotID          int64  `json:"lot_id"`
	Mantis         string `json:"mantis"`
	IsNewLot       bool   `json:"is_new_lot"`
	ArtefactNumber *int   `json:"artefact_number"`
	PreviousID     *int64 `json:"previous_id"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

// toInstallationResponse converts a domain Installation and its lots to JSON form.
func toInstallationResponse(inst model.Installation, lots []model.Lot) InstallationResponse {
	lotResp := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		lotResp = append(lotResp, LotResponse{ID: l.ID, Name: l.Name, Version: l.Version})
	}

	return InstallationResponse{
		ID:           inst.ID,
		Mantis:       inst.Mantis,
		Description:  inst.Description,
		User:         inst.Requester,
		Priority:     inst.Priority,
		Status:       string(inst.Status),
		StatusLabel:  inst.Status.Label(),
		Category:     string(inst.Category),
		StartDate:    formatDate(inst.StartDate),
		DesiredDate:  formatDate(inst.DesiredDate),
		DeliveryDate: formatDate(inst.DeliveryDate),
		Commentary:   inst.Commentary,
		KnownLots:    inst.Counters.KnownLots,
		NewVersions:  inst.Counters.NewVersions,
		NewLots:      inst.Counters.NewLots,
		Lots:         lotResp,
	}
}

// toLotVersionResponse converts a domain LotVersion to its JSON representation.
func toLotVersionResponse(v model.LotVersion) LotVersionResponse {
	return LotVersionResponse{
		ID:             v.ID,
		LotID:          v.LotID,
		Mantis:         v.Mantis,
		IsNewLot:       v.IsNewLot,
		ArtefactNumber: v.ArtefactNumber,
		PreviousID:     v.PreviousID,
	}
}
