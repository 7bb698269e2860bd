package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
	"lead-intake/internal/leads"
)

// DefaultMaxBodyBytes caps lead submission bodies.
const DefaultMaxBodyBytes = 64 << 10

// Submitter is satisfied by *leads.Orchestrator.
type Submitter interface {
	Submit(ctx context.Context, lead *leads.Submission) (*leads.Outcome, error)
}

// LeadHandler serves POST /api/leads.
type LeadHandler struct {
	validator    *leads.Validator
	submitter    Submitter
	errs         *apperrors.ErrorHandler
	logger       logger.Logger
	maxBodyBytes int64
}

// CreateLeadResponse is the 201 body.
type CreateLeadResponse struct {
	Success bool               `json:"success"`
	LeadID  string             `json:"leadId"`
	Sinks   []leads.SinkResult `json:"sinks"`
}

func NewLeadHandler(validator *leads.Validator, submitter Submitter, maxBodyBytes int64, log logger.Logger) *LeadHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	log = log.WithFields(map[string]interface{}{"component": "lead-handler"})
	return &LeadHandler{
		validator:    validator,
		submitter:    submitter,
		errs:         apperrors.NewErrorHandler(log),
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

// Create validates the body, stores the lead and reports every sink outcome.
// Secondary sink failures never change the 201 status.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := h.decode(w, r)
	if err != nil {
		metrics.LeadSubmissions.WithLabelValues("parse_error").Inc()
		h.errs.Write(w, r, apperrors.NewParseError(err))
		return
	}

	lead, err := h.validator.Validate(raw)
	if err != nil {
		var verr *leads.ValidationError
		if errors.As(err, &verr) {
			metrics.LeadSubmissions.WithLabelValues("validation_failed").Inc()
			h.logger.Debug("lead rejected", map[string]interface{}{"fields": verr.Fields})
			h.errs.WriteValidation(w, verr.Fields)
			return
		}
		h.errs.Write(w, r, err)
		return
	}

	outcome, err := h.submitter.Submit(r.Context(), lead)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	sinks := outcome.SinkResults
	if sinks == nil {
		sinks = []leads.SinkResult{}
	}
	apperrors.WriteJSON(w, http.StatusCreated, CreateLeadResponse{
		Success: true,
		LeadID:  outcome.PrimaryRecordID,
		Sinks:   sinks,
	})
}

// decode reads one JSON object. Oversized bodies, trailing data and non-object
// payloads are parse errors.
func (h *LeadHandler) decode(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return raw, nil
}
