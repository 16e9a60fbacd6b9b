// Package notify sends the confirmation email.  Delivery is best effort:
// the lifecycle service treats a false return as a diagnostic, never as a
// reason to roll back a confirmation.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/prebel/reservas-service/internal/config"
)

// EmailNotifier delivers confirmation mails over SMTP.
type EmailNotifier struct {
	cfg config.SMTPConfig
	log *logrus.Logger
}

func NewEmailNotifier(cfg config.SMTPConfig, log *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, log: log}
}

// Notify sends the confirmation mail for a reservation and reports
// whether delivery succeeded.  Missing recipient or unconfigured
// credentials disable sending without failing the caller.
func (n *EmailNotifier) Notify(ctx context.Context, email, nombre, numeroReserva string) bool {
	if email == "" || n.cfg.User == "" {
		n.log.Warn("email o credenciales SMTP no configuradas, email no enviado")
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Reserva Confirmada - Prebel")
	m.SetBody("text/html", fmt.Sprintf(`
		<h2>¡Reserva Confirmada!</h2>
		<p>Estimado/a <strong>%s</strong>,</p>
		<p>Su reserva ha sido confirmada exitosamente.</p>
		<p><strong>Número de Reserva:</strong> %s</p>
		<p>Nos pondremos en contacto con usted pronto para confirmar los detalles.</p>
		<br>
		<p>Saludos,<br>Equipo de Prebel</p>`, nombre, numeroReserva))

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		n.log.WithError(err).WithField("email", email).Error("error al enviar email de confirmación")
		return false
	}
	n.log.WithField("email", email).Info("email de confirmación enviado")
	return true
}
