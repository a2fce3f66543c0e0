package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyOTP     = "verify_otp"
	TemplateResetPassword = "reset_password"
	TemplateResetSuccess  = "reset_success"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the known templates; Data feeds its placeholders.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}
