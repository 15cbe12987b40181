package entity

// Submission is a single contact form submission.
type Submission struct {
	Name      string `validate:"required"`
	Email     string `validate:"required"`
	Message   string `validate:"required"`
	Subscribe bool
}

// Notification is the email sent to the studio for an accepted submission.
type Notification struct {
	FromName string
	From     string
	To       string
	ReplyTo  string
	Subject  string
	Body     string
}

// RelayResult is what a caller of the relay gets back: an HTTP status and a human-readable message.
type RelayResult struct {
	Status  int
	Message string
}
