package mailer

import "github.com/agrovia/farmstead/pkg/logger"

// DevMailer prints outbound mail to the log instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendPasswordResetEmail(toEmail, toName, resetURL string) error {
	logger.Info("[DEV MAIL] password reset",
		"to", toEmail,
		"name", toName,
		"reset_url", resetURL,
	)
	return nil
}

func (d *DevMailer) SendOTPEmail(toEmail, code string) error {
	logger.Info("[DEV MAIL] verification code",
		"to", toEmail,
		"code", code,
	)
	return nil
}
