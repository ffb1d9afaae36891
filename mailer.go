package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// sendMail delivers a plain-text mail over the configured SMTP account.
var sendMail = func(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func sendPasswordResetMail(to, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", cfg.PublicBaseURL, token)
	body := fmt.Sprintf(
		"Guten Tag,\n\n"+
			"für Ihr Konto wurde das Zurücksetzen des Passworts angefordert.\n"+
			"Der folgende Link ist 5 Minuten gültig:\n\n%s\n\n"+
			"Falls Sie diese Anfrage nicht gestellt haben, ignorieren Sie diese E-Mail.\n", link)
	if err := sendMail(to, "Passwort zurücksetzen", body); err != nil {
		log.Error().Err(err).Msg("password reset mail failed")
	}
}

func sendPasswordChangedMail(to string) {
	body := "Guten Tag,\n\nIhr Passwort wurde soeben geändert.\n" +
		"Falls Sie diese Änderung nicht vorgenommen haben, wenden Sie sich bitte umgehend an Ihren Administrator.\n"
	if err := sendMail(to, "Passwort geändert", body); err != nil {
		log.Error().Err(err).Msg("password changed mail failed")
	}
}
