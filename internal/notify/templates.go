package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TimestampLayout renders request times, e.g. "March 04, 2025 at 02:30 PM".
const TimestampLayout = "January 02, 2006 at 03:04 PM"

const (
	templateConfirmation = "request_confirmation"
	templateNewRequest   = "new_request"
)

var (
	htmlTemplates = htmltpl.Must(htmltpl.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttpl.Must(texttpl.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// RequestEmail is the data shared by both request emails.
type RequestEmail struct {
	CustomerName  string
	CustomerEmail string
	CompanyName   string
	CompanyEmail  string
	ServiceName   string
	ServiceField  string
	Address       string
	Hours         string
	Cost          string
	RequestedAt   time.Time
	SiteURL       string
}

type requestEmailView struct {
	RequestEmail
	RequestedAt string
	ProfileURL  string
	RequestsURL string
}

func (d RequestEmail) view() requestEmailView {
	site := strings.TrimRight(d.SiteURL, "/")
	profileURL, requestsURL := "#", "#"
	if site != "" {
		profileURL = fmt.Sprintf("%s/profiles/%s", site, d.CustomerName)
		requestsURL = site + "/me/requests"
	}
	return requestEmailView{
		RequestEmail: d,
		RequestedAt:  d.RequestedAt.Format(TimestampLayout),
		ProfileURL:   profileURL,
		RequestsURL:  requestsURL,
	}
}

// RequestConfirmation renders the customer's confirmation email.
func RequestConfirmation(d RequestEmail) (Message, error) {
	return render(templateConfirmation, d.CustomerEmail, "Service Request Confirmed - "+d.ServiceName, d.view())
}

// NewRequestNotification renders the company's new-request email.
func NewRequestNotification(d RequestEmail) (Message, error) {
	return render(templateNewRequest, d.CompanyEmail, "New Service Request - "+d.ServiceName, d.view())
}

func render(name, to, subject string, data requestEmailView) (Message, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()}, nil
}
