package notification

import (
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/aapkitaxi/service-booking/internal/phone"
)

// Trial accounts reject messages to numbers that were never verified in the
// console. Those sends are classified as delivered so the booking flow is
// not blocked in development.
const errCodeUnverifiedRecipient = 21608

// TwilioNotifier delivers SMS through the Twilio messaging API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

// NewTwilioNotifier builds a TwilioNotifier and verifies the credentials by
// fetching the account. An error here means the SMS channel stays disabled;
// it is not fatal to the service.
func NewTwilioNotifier(accountSID, authToken, from string, logger *zap.Logger) (*TwilioNotifier, error) {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	account, err := client.Api.FetchAccount(accountSID)
	if err != nil {
		return nil, err
	}
	if account.Status != nil {
		logger.Info("twilio connected", zap.String("account_status", *account.Status))
	}

	return &TwilioNotifier{client: client, from: from, logger: logger}, nil
}

// Send normalizes the recipient number and attempts delivery. Unverified
// trial recipients count as delivered with the body logged instead; any
// other failure is logged and reported as not delivered.
func (n *TwilioNotifier) Send(to, body string) bool {
	dialable := phone.Normalize(to)

	params := &openapi.CreateMessageParams{}
	params.SetTo(dialable)
	params.SetFrom(n.from)
	params.SetBody(body)

	msg, err := n.client.Api.CreateMessage(params)
	if err != nil {
		if isUnverifiedRecipient(err) {
			n.logger.Warn("recipient not verified on trial account, logging message instead",
				zap.String("to", dialable),
				zap.String("body", body),
			)
			return true
		}
		n.logger.Error("failed to send sms",
			zap.String("to", dialable),
			zap.Error(err),
		)
		return false
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	n.logger.Info("sms sent",
		zap.String("to", dialable),
		zap.String("message_sid", sid),
	)
	return true
}

// Enabled reports that the SMS channel is live.
func (n *TwilioNotifier) Enabled() bool { return true }

func isUnverifiedRecipient(err error) bool {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) && restErr.Code == errCodeUnverifiedRecipient {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not yet verified")
}
