package otp

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/go-blog-nosql/internal/domain"
)

const mailSubject = "OTP Verification Blog App"

var mailTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f4f4f4; padding: 24px;">
  <div style="max-width: 560px; margin: 0 auto; background: #ffffff; padding: 24px; border-radius: 6px;">
    <h2>Verify your email</h2>
    <p>Use the code below to activate your Blog App account.</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    {{if .Validity}}<p>This OTP is valid for {{.Validity}}. If you did not request this verification, please disregard this email.</p>{{else}}<p>If you did not request this verification, please disregard this email.</p>{{end}}
  </div>
</body>
</html>`))

func buildMail(email, code string, ttl time.Duration) (domain.Mail, error) {
	var buf bytes.Buffer
	data := struct {
		Code     string
		Validity string
	}{Code: code, Validity: humanize(ttl)}
	if err := mailTemplate.Execute(&buf, data); err != nil {
		return domain.Mail{}, fmt.Errorf("render otp mail: %w", err)
	}
	return domain.Mail{To: email, Subject: mailSubject, Body: buf.String()}, nil
}

// humanize renders a TTL the way the mail copy phrases it ("5 minutes").
func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
