package domain

// Mail is an outbound email. Body is HTML.
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
