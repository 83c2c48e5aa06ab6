package libs

import (
	"fmt"
	"os"
	"strconv"

	"storefront/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
}

func NewMailer() (*Mailer, error) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	if smtpHost == "" || smtpUser == "" || smtpPass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		port = 587
	}

	return &Mailer{dialer: gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)}, nil
}

func (m *Mailer) SendOrderConfirmation(toEmail string, order *models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", os.Getenv("SMTP_FROM"))
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order %s confirmed", order.OrderNumber))

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Thanks for your order!</h2>
	<p>Your order <strong>%s</strong> has been received.</p>
	<table>
		<tr><td>Subtotal</td><td>%s</td></tr>
		<tr><td>Shipping</td><td>%s</td></tr>
		<tr><td><strong>Total</strong></td><td><strong>%s</strong></td></tr>
	</table>
	<p>We will let you know when it ships to %s, %s - %s.</p>
</body>
</html>`,
		order.OrderNumber,
		order.Subtotal.StringFixed(2),
		order.Shipping.StringFixed(2),
		order.Total.StringFixed(2),
		order.Address.Street, order.Address.Number, order.Address.City,
	)

	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}
