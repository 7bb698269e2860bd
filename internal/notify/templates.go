package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	htmltemplate "html/template"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"lead-intake/internal/leads"
)

// Template names in the embedded catalog.
const (
	TemplateAdminNotification = "admin_notification"
	TemplateLeadConfirmation  = "lead_confirmation"
)

//go:embed templates/emails.yaml
var templateFS embed.FS

type templateSource struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	HTML    string `yaml:"html"`
}

type catalogFile struct {
	Templates map[string]templateSource `yaml:"templates"`
}

type compiled struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// Catalog holds the parsed email templates. It is read-only after load and safe
// for concurrent use.
type Catalog struct {
	templates map[string]compiled
}

// LeadData is the view of a lead exposed to templates.
type LeadData struct {
	LeadID           string
	Name             string
	FirstName        string
	Email            string
	Phone            string
	Company          string
	Question         string
	Source           string
	MarketingConsent bool
	Brand            string
}

// Rendered is a subject plus both bodies.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// LoadCatalog parses the embedded template catalog.
func LoadCatalog() (*Catalog, error) {
	raw, err := templateFS.ReadFile("templates/emails.yaml")
	if err != nil {
		return nil, fmt.Errorf("read template catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog parses a YAML catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	c := &Catalog{templates: make(map[string]compiled, len(file.Templates))}
	for name, src := range file.Templates {
		if src.Subject == "" || (src.Text == "" && src.HTML == "") {
			return nil, fmt.Errorf("template %q needs a subject and a body", name)
		}

		var t compiled
		var err error
		if t.subject, err = texttemplate.New(name + ".subject").Option("missingkey=error").Parse(src.Subject); err != nil {
			return nil, fmt.Errorf("template %q subject: %w", name, err)
		}
		if src.Text != "" {
			if t.text, err = texttemplate.New(name + ".text").Option("missingkey=error").Parse(src.Text); err != nil {
				return nil, fmt.Errorf("template %q text: %w", name, err)
			}
		}
		if src.HTML != "" {
			if t.html, err = htmltemplate.New(name + ".html").Option("missingkey=error").Parse(src.HTML); err != nil {
				return nil, fmt.Errorf("template %q html: %w", name, err)
			}
		}
		c.templates[name] = t
	}
	return c, nil
}

// Render executes the named template with data. User-supplied fields are
// stripped of markup first.
func (c *Catalog) Render(name string, data LeadData) (*Rendered, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	data = sanitize(data)
	out := &Rendered{}

	var buf bytes.Buffer
	if err := t.subject.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}
	// no header injection through the subject line
	out.Subject = strings.Join(strings.Fields(buf.String()), " ")

	if t.text != nil {
		buf.Reset()
		if err := t.text.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s text: %w", name, err)
		}
		out.Text = buf.String()
	}
	if t.html != nil {
		buf.Reset()
		if err := t.html.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s html: %w", name, err)
		}
		out.HTML = buf.String()
	}
	return out, nil
}

func sanitize(d LeadData) LeadData {
	p := stripPolicy()
	d.Name = strip(p, d.Name)
	d.FirstName = strip(p, d.FirstName)
	d.Email = strip(p, d.Email)
	d.Phone = strip(p, d.Phone)
	d.Company = strip(p, d.Company)
	d.Question = strip(p, d.Question)
	d.Source = strip(p, d.Source)
	d.Brand = strip(p, d.Brand)
	return d
}

// strip removes all markup. StrictPolicy entity-escapes what it keeps, so the
// result is unescaped again to leave escaping to the templates.
func strip(p *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// NewLeadData exposes lead to the templates under brand.
func NewLeadData(lead *leads.Submission, brand string) LeadData {
	return LeadData{
		LeadID:           lead.ID,
		Name:             lead.FullName(),
		FirstName:        lead.FirstName,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Company:          lead.Company,
		Question:         lead.Question,
		Source:           lead.Source,
		MarketingConsent: lead.MarketingConsent,
		Brand:            brand,
	}
}
