package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/models"
)

// ChallengeGateway abstracts phone-possession challenges. The flow
// controller is written against these two methods only, so the self-issued
// and delegated designs can be swapped from configuration without touching
// orchestration logic.
type ChallengeGateway interface {
	SendChallenge(ctx context.Context, guestID uuid.UUID, phone, ipHash string) error
	CheckChallenge(ctx context.Context, guestID uuid.UUID, phone, code string) (CodeResult, error)
}

// SMSSender delivers a raw text message in the self-issued design.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// NewChallengeGateway selects the gateway once at startup. Missing delivery
// credentials degrade to logging the code, which the flows treat as success
// so local development is never blocked.
func NewChallengeGateway(cfg *config.Config, codes *VerificationService) ChallengeGateway {
	switch strings.ToLower(cfg.SMSProvider) {
	case "twilio-verify":
		if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioVerifyServiceID != "" {
			return newTwilioVerifyGateway(cfg)
		}
		zap.L().Warn("twilio verify credentials missing, falling back to self-issued codes with log delivery")
		return &selfIssuedGateway{codes: codes, sender: &logSender{}}
	case "log":
		return &selfIssuedGateway{codes: codes, sender: &logSender{}}
	default:
		var sender SMSSender = &logSender{}
		if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
			sender = newTwilioSender(cfg)
		} else {
			zap.L().Warn("sms credentials missing, codes will be logged instead of sent")
		}
		return &selfIssuedGateway{codes: codes, sender: sender}
	}
}

// selfIssuedGateway generates and checks codes locally; the sender only
// delivers the text.
type selfIssuedGateway struct {
	codes  *VerificationService
	sender SMSSender
}

func (g *selfIssuedGateway) SendChallenge(ctx context.Context, guestID uuid.UUID, phone, ipHash string) error {
	code, err := g.codes.Issue(guestID, phone, models.PurposeEditProfile, ipHash)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	return g.sender.Send(ctx, phone, body)
}

func (g *selfIssuedGateway) CheckChallenge(ctx context.Context, guestID uuid.UUID, phone, code string) (CodeResult, error) {
	return g.codes.CheckLatest(guestID, models.PurposeEditProfile, code)
}

// logSender is the development fallback: it logs instead of sending and
// reports success.
type logSender struct{}

func (s *logSender) Send(ctx context.Context, to, body string) error {
	zap.L().Info("sms delivery disabled, logging message", zap.String("to", to), zap.String("body", body))
	return nil
}

// twilioSender delivers texts through the Twilio Messages REST API.
type twilioSender struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
}

func newTwilioSender(cfg *config.Config) *twilioSender {
	return &twilioSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.TwilioFromNumber,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *twilioSender) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms send failed with status %d", resp.StatusCode)
	}
	return nil
}

// twilioVerifyGateway delegates challenge issuance and checking to the
// Twilio Verify service. No local code records are created in this mode; the
// provider is authoritative for expiry and attempt policy.
type twilioVerifyGateway struct {
	accountSID string
	authToken  string
	serviceSID string
	client     *http.Client
}

func newTwilioVerifyGateway(cfg *config.Config) *twilioVerifyGateway {
	return &twilioVerifyGateway{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		serviceSID: cfg.TwilioVerifyServiceID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *twilioVerifyGateway) SendChallenge(ctx context.Context, guestID uuid.UUID, phone, ipHash string) error {
	endpoint := fmt.Sprintf("https://verify.twilio.com/v2/Services/%s/Verifications", g.serviceSID)
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Channel", "sms")

	resp, err := g.post(ctx, endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("verification start failed with status %d", resp.StatusCode)
	}
	return nil
}

func (g *twilioVerifyGateway) CheckChallenge(ctx context.Context, guestID uuid.UUID, phone, code string) (CodeResult, error) {
	endpoint := fmt.Sprintf("https://verify.twilio.com/v2/Services/%s/VerificationCheck", g.serviceSID)
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Code", code)

	resp, err := g.post(ctx, endpoint, form)
	if err != nil {
		return CodeMismatch, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Anything other than an approved check maps to a generic
		// rejection, never an error surfaced to the caller.
		return CodeMismatch, nil
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return CodeMismatch, err
	}
	if result.Status != "approved" {
		return CodeMismatch, nil
	}
	return CodeAccepted, nil
}

func (g *twilioVerifyGateway) post(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.accountSID, g.authToken)
	return g.client.Do(req)
}
