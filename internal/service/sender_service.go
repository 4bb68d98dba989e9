package service

import (
	"fmt"

	"benevita/internal/config"
	"benevita/internal/db"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// SenderService delivers booking notifications by email and SMS. Sends run
// asynchronously; a delivery failure never fails the transition that
// triggered it.
type SenderService struct {
	log *zap.SugaredLogger
}

func NewSenderService(log *zap.SugaredLogger) *SenderService {
	return &SenderService{log: log}
}

func (s *SenderService) BookingConfirmed(booking *db.Booking, provider *db.Provider, subject *db.Account) {
	when := booking.StartsAt.Format("02 Jan 2006 15:04 MST")
	subjectLine := fmt.Sprintf("Your appointment on %s is confirmed", when)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s %s on %s is confirmed.\n\n"+
			"Type: %s\n\nBenevita.",
		subject.FirstName, provider.FirstName, provider.LastName, when, booking.AppointmentType,
	)
	sms := fmt.Sprintf("Benevita: appointment with %s %s on %s confirmed.",
		provider.FirstName, provider.LastName, booking.StartsAt.Format("02/01 15:04"))

	go s.deliver(subject, subjectLine, body, sms)
}

func (s *SenderService) BookingCanceled(booking *db.Booking, provider *db.Provider, subject *db.Account) {
	when := booking.StartsAt.Format("02 Jan 2006 15:04 MST")
	subjectLine := fmt.Sprintf("Your appointment on %s was canceled", when)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s %s on %s has been canceled. "+
			"No refund applies to canceled appointments.\n\nBenevita.",
		subject.FirstName, provider.FirstName, provider.LastName, when,
	)
	sms := fmt.Sprintf("Benevita: appointment with %s %s on %s canceled.",
		provider.FirstName, provider.LastName, booking.StartsAt.Format("02/01 15:04"))

	go s.deliver(subject, subjectLine, body, sms)
}

func (s *SenderService) deliver(to *db.Account, subjectLine, body, sms string) {
	if err := s.sendEmail(to.Email, to.FirstName, subjectLine, body); err != nil {
		s.log.Warnw("email delivery failed", "to", to.Email, "err", err)
	}
	if to.Phone != "" {
		if err := s.sendSMS(to.Phone, sms); err != nil {
			s.log.Warnw("sms delivery failed", "to", to.Phone, "err", err)
		}
	}
}

func (s *SenderService) sendEmail(toEmail, toName, subjectLine, body string) error {
	apiKey := config.AppConfig.SendgridAPIKey
	fromEmail := config.AppConfig.SendgridFromEmail
	if apiKey == "" || fromEmail == "" {
		return fmt.Errorf("sendgrid is not configured")
	}
	fromName := config.AppConfig.SendgridFromName
	if fromName == "" {
		fromName = "Benevita"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subjectLine, to, body, "")

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid answered %d", resp.StatusCode)
	}
	return nil
}

func (s *SenderService) sendSMS(to, message string) error {
	sid := config.AppConfig.TwilioAccountSID
	token := config.AppConfig.TwilioAuthToken
	from := config.AppConfig.TwilioFromNumber
	if sid == "" || token == "" || from == "" {
		return fmt.Errorf("twilio is not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(message)

	_, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
