package service

import (
	"context"
	"faaqs_backend/internal/config"
	"faaqs_backend/pkg/logger"
	"fmt"
	"net/http"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridMailer 通过 SendGrid v3 API 发信
type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridMailer(cfg *config.MailConfig) *SendgridMailer {
	return &SendgridMailer{
		key:        cfg.SendgridAPIKey,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		subjPrefix: "[" + cfg.AppName + "] ",
	}
}

func (m *SendgridMailer) prepare(to, subject, plainText, html string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + subject
	p.AddTos(sgmail.NewEmail("", to))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", plainText),
		sgmail.NewContent("text/html", html),
	)
	return msg
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, plainText, html string) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(to, subject, plainText, html))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}

// SentMail 控制台发信记录
type SentMail struct {
	To        string
	Subject   string
	PlainText string
}

// ConsoleMailer 开发环境使用，只写日志并保留发送记录
type ConsoleMailer struct {
	mu   sync.Mutex
	Sent []SentMail
}

func (m *ConsoleMailer) Send(ctx context.Context, to, subject, plainText, html string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, PlainText: plainText})
	m.mu.Unlock()
	logger.Log.Info("email (console)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", plainText))
	return nil
}

func (m *ConsoleMailer) Last() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentMail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func NewMailer(cfg *config.MailConfig) Mailer {
	if cfg.Provider == "sendgrid" && cfg.SendgridAPIKey != "" {
		return NewSendgridMailer(cfg)
	}
	return &ConsoleMailer{}
}
