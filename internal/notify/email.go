package notify

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers back-office notifications over SMTP.
type EmailSender struct {
	dialer     *gomail.Dialer
	from       string
	backOffice string
}

func NewEmailSender(host string, port int, username, password, from, backOffice string) *EmailSender {
	return &EmailSender{
		dialer:     gomail.NewDialer(host, port, username, password),
		from:       from,
		backOffice: backOffice,
	}
}

func (s *EmailSender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SendLoanCompleted tells the back office a loan finished its
// schedule.
func (s *EmailSender) SendLoanCompleted(borrowerName, loanID string, totalCollected int64, completedAt time.Time) error {
	if s.backOffice == "" {
		return nil
	}
	subject := fmt.Sprintf("Loan completed: %s", borrowerName)
	body := fmt.Sprintf(`
		<h2>Loan fully repaid</h2>
		<p>Borrower: %s</p>
		<p>Loan: %s</p>
		<p>Total collected: %d</p>
		<p>Completed: %s</p>
	`, borrowerName, loanID, totalCollected, completedAt.Format("2006-01-02 15:04"))

	return s.send(s.backOffice, subject, body)
}
