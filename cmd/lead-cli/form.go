package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	apperrors "lead-intake/internal/common/errors"
	httpclient "lead-intake/internal/common/http"
	"lead-intake/internal/common/validation"
	"lead-intake/internal/leads"
)

var errAborted = errors.New("aborted")

// answers mirrors the POST /api/leads body.
type answers struct {
	FirstName            string `survey:"firstName"`
	LastName             string `survey:"lastName"`
	Email                string `survey:"email"`
	Phone                string `survey:"phone"`
	Company              string `survey:"company"`
	Question             string `survey:"question"`
	MarketingConsent     bool   `survey:"marketingConsent"`
	CommunicationConsent bool   `survey:"communicationConsent"`
}

func questions() []*survey.Question {
	return []*survey.Question{
		{
			Name:      "firstName",
			Prompt:    &survey.Input{Message: "First name:"},
			Validate:  survey.ComposeValidators(survey.Required, survey.MinLength(2)),
			Transform: survey.TransformString(strings.TrimSpace),
		},
		{
			Name:      "lastName",
			Prompt:    &survey.Input{Message: "Last name:"},
			Transform: survey.TransformString(strings.TrimSpace),
		},
		{
			Name:      "email",
			Prompt:    &survey.Input{Message: "Email:"},
			Validate:  survey.ComposeValidators(survey.Required, emailValidator),
			Transform: survey.TransformString(strings.TrimSpace),
		},
		{
			Name:      "phone",
			Prompt:    &survey.Input{Message: "Phone:", Help: "Optional. US numbers may omit the +1."},
			Validate:  phoneValidator,
			Transform: survey.TransformString(strings.TrimSpace),
		},
		{
			Name:      "company",
			Prompt:    &survey.Input{Message: "Company:"},
			Transform: survey.TransformString(strings.TrimSpace),
		},
		{
			Name:     "question",
			Prompt:   &survey.Multiline{Message: "Question:"},
			Validate: survey.MinLength(5),
		},
		{
			Name:   "marketingConsent",
			Prompt: &survey.Confirm{Message: "Consented to marketing email?"},
		},
		{
			Name:   "communicationConsent",
			Prompt: &survey.Confirm{Message: "Consented to be contacted?", Default: true},
		},
	}
}

func emailValidator(ans interface{}) error {
	s, _ := ans.(string)
	if !validation.ValidateEmail(strings.TrimSpace(s)) {
		return errors.New("must be a valid email address")
	}
	return nil
}

func phoneValidator(ans interface{}) error {
	s, _ := ans.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !validation.ValidatePhone(s) {
		return errors.New("must be a valid phone number")
	}
	return nil
}

// ask runs the interactive form.
func ask() (*answers, error) {
	var a answers
	if err := survey.Ask(questions(), &a); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return nil, errAborted
		}
		return nil, err
	}
	return &a, nil
}

func (a *answers) payload(source string) map[string]interface{} {
	body := map[string]interface{}{
		"firstName":            a.FirstName,
		"email":                a.Email,
		"question":             strings.TrimSpace(a.Question),
		"marketingConsent":     a.MarketingConsent,
		"communicationConsent": a.CommunicationConsent,
		"source":               source,
	}
	for key, v := range map[string]string{"lastName": a.LastName, "phone": a.Phone, "company": a.Company} {
		if v != "" {
			body[key] = v
		}
	}
	return body
}

type createResponse struct {
	Success bool               `json:"success"`
	LeadID  string             `json:"leadId"`
	Sinks   []leads.SinkResult `json:"sinks"`
}

// RejectedError carries the server's error body for a 4xx/5xx response.
type RejectedError struct {
	Status int
	Body   apperrors.ErrorResponse
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server rejected lead (%d): %s", e.Status, e.Body.Error)
}

func submit(ctx context.Context, client *httpclient.Client, body map[string]interface{}) (*createResponse, error) {
	var resp createResponse
	err := client.DoJSON(ctx, http.MethodPost, "/api/leads", body, &resp)
	if err == nil {
		return &resp, nil
	}
	statusErr, ok := httpclient.AsStatusError(err)
	if !ok {
		return nil, err
	}
	rejected := &RejectedError{Status: statusErr.StatusCode}
	if json.Unmarshal(statusErr.Body, &rejected.Body) != nil {
		rejected.Body.Error = strings.TrimSpace(string(statusErr.Body))
	}
	return nil, rejected
}

func printResult(w io.Writer, resp *createResponse) {
	fmt.Fprintf(w, "Lead stored: %s\n", resp.LeadID)
	if len(resp.Sinks) == 0 {
		fmt.Fprintln(w, "No secondary sinks configured.")
		return
	}
	for _, s := range resp.Sinks {
		if s.Success {
			ref := s.ReferenceID
			if ref == "" {
				ref = "-"
			}
			fmt.Fprintf(w, "  ok    %-18s %s\n", s.Name, ref)
			continue
		}
		fmt.Fprintf(w, "  FAIL  %-18s %s\n", s.Name, s.Error)
	}
}

func printRejected(w io.Writer, rejected *RejectedError) {
	fmt.Fprintf(w, "Rejected (%d): %s\n", rejected.Status, rejected.Body.Error)
	for field, msg := range rejected.Body.Details {
		fmt.Fprintf(w, "  %s %s\n", field, msg)
	}
}
