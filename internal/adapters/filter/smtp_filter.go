package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"go.uber.org/zap"
)

// maxReasonsHeader keeps the reasons header under the 998 byte line limit
const maxReasonsHeader = 900

// relayFunc delivers a message to the downstream MTA
type relayFunc func(sender string, recipients []string, data []byte) error

// SMTPFilter is an SMTP content filter: it classifies the envelope sender,
// stamps the result into the message headers and relays it onward
type SMTPFilter struct {
	service  *core.ClassificationService
	text     *utils.TextProcessor
	logger   *zap.Logger
	cfg      config.SMTPConfig
	server   *smtp.Server
	listener net.Listener
	relay    relayFunc
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(service *core.ClassificationService, text *utils.TextProcessor, logger *zap.Logger, cfg config.SMTPConfig) *SMTPFilter {
	f := &SMTPFilter{
		service: service,
		text:    text,
		logger:  logger,
		cfg:     cfg,
	}
	f.relay = f.sendToRelay
	return f
}

// Start starts the SMTP listener
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Domain = f.cfg.Domain
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = f.cfg.MaxMessageBytes
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.listener = ln
	f.server.Addr = ln.Addr().String()

	f.logger.Info("SMTP filter starting", zap.String("address", f.server.Addr))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (f *SMTPFilter) Addr() string {
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// Stop stops the SMTP listener
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// sendToRelay hands the processed message back to the downstream MTA
func (f *SMTPFilter) sendToRelay(sender string, recipients []string, data []byte) error {
	if !f.cfg.RelayEnabled {
		f.logger.Warn("Relay disabled, message dropped after classification", zap.String("sender", sender))
		return nil
	}

	addr := net.JoinHostPort(f.cfg.RelayAddress, strconv.Itoa(f.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

func (f *SMTPFilter) ourHeaders() []string {
	return []string{f.cfg.CategoryHeader, f.cfg.ScoreHeader, f.cfg.ReasonsHeader}
}

// process classifies one message and returns what should be relayed
func (f *SMTPFilter) process(ctx context.Context, sender string, raw []byte) ([]byte, error) {
	// Inbound copies of our headers cannot be trusted
	cleaned := stripHeaders(raw, f.ourHeaders())

	if sender == "" {
		return cleaned, nil
	}

	var firstName, lastName string
	if msg, err := mail.ReadMessage(bytes.NewReader(raw)); err == nil {
		firstName, lastName = f.text.SplitDisplayName(displayName(msg.Header.Get("From")))
	} else {
		f.logger.Debug("Failed to parse message headers", zap.Error(err))
	}

	result, err := f.service.Classify(ctx, &core.Contact{
		Email:     sender,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		f.logger.Debug("Sender not classified", zap.String("sender", sender), zap.Error(err))
		return cleaned, nil
	}

	if result.IsBot() && f.cfg.RejectBots {
		f.logger.Info("Rejecting automated sender",
			zap.String("sender", sender),
			zap.Int("bot_score", result.Score),
			zap.Strings("reason_tags", result.Reasons))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as automated sender (score: %d)", result.Score),
		}
	}

	reasons := f.text.TruncateText(strings.Join(result.Reasons, "; "), maxReasonsHeader)
	if reasons == "" {
		reasons = "none"
	}

	f.logger.Info("Processed message",
		zap.String("sender", sender),
		zap.Int("bot_score", result.Score),
		zap.String("category", string(result.Category)),
		zap.String("model", result.ModelUsed))

	return prependHeaders(cleaned, [][2]string{
		{f.cfg.CategoryHeader, string(result.Category)},
		{f.cfg.ScoreHeader, strconv.Itoa(result.Score)},
		{f.cfg.ReasonsHeader, reasons},
	}), nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := s.filter.process(ctx, s.sender, raw)
	if err != nil {
		return err
	}

	if err := s.filter.relay(s.sender, s.recipients, out); err != nil {
		s.filter.logger.Error("Failed to relay message",
			zap.String("sender", s.sender),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary relay failure",
		}
	}
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
