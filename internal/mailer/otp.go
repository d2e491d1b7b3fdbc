package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

type Purpose int

const (
	PurposeRegistration Purpose = iota
	PurposePasswordReset
)

//go:embed templates/*.html
var templateFS embed.FS

var otpTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type otpData struct {
	Code    string
	Minutes int
}

// OTPMessage renders the email carrying code for the given purpose.
func OTPMessage(purpose Purpose, to, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var subject, tmpl, text string
	switch purpose {
	case PurposeRegistration:
		subject = "Your OTP for Registration"
		tmpl = "otp_registration.html"
		text = fmt.Sprintf("Your One-Time Password (OTP) is: %s. It is valid for %d minutes. Do not share this with anyone.", code, minutes)
	case PurposePasswordReset:
		subject = "Password Reset OTP"
		tmpl = "otp_reset.html"
		text = fmt.Sprintf("Your One-Time Password (OTP) for password reset is: %s. It is valid for %d minutes. Do not share this with anyone.", code, minutes)
	default:
		return Message{}, fmt.Errorf("unknown otp purpose %d", purpose)
	}

	var buf bytes.Buffer
	if err := otpTemplates.ExecuteTemplate(&buf, tmpl, otpData{Code: code, Minutes: minutes}); err != nil {
		return Message{}, err
	}

	return Message{To: to, Subject: subject, HTML: buf.String(), Text: text}, nil
}
