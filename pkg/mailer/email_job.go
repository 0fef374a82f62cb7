package mailer

// EmailJob is one message handed to a Sender. When Template is set, Subject,
// Text and HTML are rendered from it with Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // account_created, account_updated, password_changed
	Data     map[string]any `json:"data,omitempty"`
}
