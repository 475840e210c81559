package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEmail() RequestEmail {
	return RequestEmail{
		CustomerName:  "jane.doe",
		CustomerEmail: "jane@example.com",
		CompanyName:   "acme.plumbing",
		CompanyEmail:  "ops@acme.test",
		ServiceName:   "Pipe Repair",
		ServiceField:  "Plumbing",
		Address:       "12 <Main> St",
		Hours:         "2.5",
		Cost:          "187.50",
		RequestedAt:   time.Date(2025, time.March, 4, 14, 30, 0, 0, time.UTC),
		SiteURL:       "https://xpertshub.test/",
	}
}

func TestRequestConfirmation(t *testing.T) {
	msg, err := RequestConfirmation(sampleEmail())
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Service Request Confirmed - Pipe Repair", msg.Subject)
	assert.Contains(t, msg.Text, "March 04, 2025 at 02:30 PM")
	assert.Contains(t, msg.Text, "$187.50")
	assert.Contains(t, msg.Text, "https://xpertshub.test/profiles/jane.doe")
	assert.Contains(t, msg.HTML, "12 &lt;Main&gt; St")
	assert.NoError(t, msg.Validate())
}

func TestNewRequestNotification(t *testing.T) {
	data := sampleEmail()
	data.SiteURL = ""
	msg, err := NewRequestNotification(data)
	require.NoError(t, err)

	assert.Equal(t, "ops@acme.test", msg.To)
	assert.Equal(t, "New Service Request - Pipe Repair", msg.Subject)
	assert.Contains(t, msg.Text, "jane.doe (jane@example.com) requested Pipe Repair.")
	assert.Contains(t, msg.Text, "Open received requests: #")
	assert.Contains(t, msg.HTML, "2.5 hours")
}

func TestMessageValidate(t *testing.T) {
	assert.Error(t, Message{Subject: "s", Text: "t"}.Validate())
	assert.Error(t, Message{To: "a@b.c", Text: "t"}.Validate())
	assert.Error(t, Message{To: "a@b.c", Subject: "s"}.Validate())
	assert.NoError(t, Message{To: "a@b.c", Subject: "s", HTML: "<p>x</p>"}.Validate())
}
