package filter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"github.com/funneltechie/inboxreadybotclassifier/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedMessage struct {
	sender     string
	recipients []string
	data       string
}

type captureRelay struct {
	mu       sync.Mutex
	messages []capturedMessage
	err      error
}

func (r *captureRelay) send(sender string, recipients []string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, capturedMessage{sender, recipients, string(data)})
	return nil
}

func (r *captureRelay) all() []capturedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedMessage(nil), r.messages...)
}

func testSMTPConfig() config.SMTPConfig {
	cfg := config.NewFromViper(config.NewEmptyViper()).GetSMTP()
	cfg.ListenAddress = "127.0.0.1:0"
	return cfg
}

func newTestSMTPFilter(t *testing.T, cfg config.SMTPConfig, trusted ...string) (*SMTPFilter, *captureRelay) {
	t.Helper()
	logger := zap.NewNop()
	text := utils.NewTextProcessor(logger)

	var trust core.TrustList
	if len(trusted) > 0 {
		trust = whitelist.NewChecker(trusted, logger)
	}
	service := core.NewClassificationService(nil, nil, trust, nil, text, logger, false, 0, "")

	f := NewSMTPFilter(service, text, logger, cfg)
	relay := &captureRelay{}
	f.relay = relay.send
	return f, relay
}

const plainMessage = "From: <noreply@example.com>\r\n" +
	"Subject: Your receipt\r\n" +
	"\r\n" +
	"Thanks for your order.\r\n"

func TestSMTPProcessStampsHeaders(t *testing.T) {
	f, _ := newTestSMTPFilter(t, testSMTPConfig())

	out, err := f.process(context.Background(), "NoReply@Example.com", []byte(plainMessage))
	require.NoError(t, err)

	want := "X-Bot-Category: Likely Automated\r\n" +
		"X-Bot-Score: 55\r\n" +
		"X-Bot-Reasons: Role-based email; Moderate entropy for string length\r\n" +
		plainMessage
	assert.Equal(t, want, string(out))
}

func TestSMTPProcessStripsForgedHeaders(t *testing.T) {
	f, _ := newTestSMTPFilter(t, testSMTPConfig())

	forged := "X-Bot-Category: Likely Human\r\n" +
		"x-bot-score: 0\r\n" +
		"X-Bot-Reasons: none,\r\n" +
		"\tcontinued\r\n" +
		plainMessage

	out, err := f.process(context.Background(), "noreply@example.com", []byte(forged))
	require.NoError(t, err)

	s := string(out)
	assert.Equal(t, 1, strings.Count(strings.ToLower(s), "x-bot-score:"))
	assert.NotContains(t, s, "Likely Human")
	assert.NotContains(t, s, "continued")
	assert.True(t, strings.HasSuffix(s, plainMessage))
}

func TestSMTPProcessNullSenderPassesThrough(t *testing.T) {
	f, _ := newTestSMTPFilter(t, testSMTPConfig())

	bounce := "X-Bot-Score: 99\r\n" + plainMessage
	out, err := f.process(context.Background(), "", []byte(bounce))
	require.NoError(t, err)
	assert.Equal(t, plainMessage, string(out))
}

func TestSMTPProcessTrustedSender(t *testing.T) {
	f, _ := newTestSMTPFilter(t, testSMTPConfig(), "example.com")

	out, err := f.process(context.Background(), "noreply@example.com", []byte(plainMessage))
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "X-Bot-Category: Likely Human\r\n")
	assert.Contains(t, s, "X-Bot-Score: 0\r\n")
	assert.Contains(t, s, "X-Bot-Reasons: Trusted domain\r\n")
}

func TestSMTPProcessRejectsBots(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.RejectBots = true
	f, _ := newTestSMTPFilter(t, cfg)

	_, err := f.process(context.Background(), "xrumerbot99@gmail.com", []byte(plainMessage))
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 550, smtpErr.Code)
	assert.Equal(t, smtp.EnhancedCode{5, 7, 1}, smtpErr.EnhancedCode)

	// Automated but below the bot threshold is still delivered
	out, err := f.process(context.Background(), "noreply@example.com", []byte(plainMessage))
	require.NoError(t, err)
	assert.Contains(t, string(out), "X-Bot-Score: 55")
}

func TestSMTPProcessCustomHeaderNames(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.CategoryHeader = "X-Signup-Category"
	cfg.ScoreHeader = "X-Signup-Score"
	cfg.ReasonsHeader = "X-Signup-Reasons"
	f, _ := newTestSMTPFilter(t, cfg)

	out, err := f.process(context.Background(), "jane.doe@company.com", []byte(plainMessage))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "X-Signup-Category: Likely Human\r\nX-Signup-Score: 15\r\n"))
}

func TestSMTPSessionDelivery(t *testing.T) {
	f, relay := newTestSMTPFilter(t, testSMTPConfig())
	require.NoError(t, f.Start())
	t.Cleanup(func() { _ = f.Stop() })

	c, err := smtp.Dial(f.Addr())
	require.NoError(t, err)
	defer c.Close()

	err = c.SendMail("noreply@example.com", []string{"ops@company.com"}, strings.NewReader(plainMessage))
	require.NoError(t, err)

	msgs := relay.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "noreply@example.com", msgs[0].sender)
	assert.Equal(t, []string{"ops@company.com"}, msgs[0].recipients)
	assert.Contains(t, msgs[0].data, "X-Bot-Category: Likely Automated")
}

func TestSMTPSessionRelayFailure(t *testing.T) {
	f, relay := newTestSMTPFilter(t, testSMTPConfig())
	relay.err = errors.New("connection refused")
	require.NoError(t, f.Start())
	t.Cleanup(func() { _ = f.Stop() })

	c, err := smtp.Dial(f.Addr())
	require.NoError(t, err)
	defer c.Close()

	err = c.SendMail("noreply@example.com", []string{"ops@company.com"}, strings.NewReader(plainMessage))
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 451, smtpErr.Code)
}
