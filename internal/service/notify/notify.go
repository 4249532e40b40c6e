package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/config"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type ReportBuilder interface {
	TransactionsReport(ctx context.Context, from, to time.Time) ([]byte, error)
}

type BalancesProvider interface {
	GetBalances(ctx context.Context) (storage.Balances, error)
}

// Sender delivers a prepared message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailService struct {
	log      *slog.Logger
	cfg      config.Mail
	sender   Sender
	reports  ReportBuilder
	balances BalancesProvider
	loc      *time.Location
	now      func() time.Time
}

func NewMailService(log *slog.Logger, cfg config.Mail, reports ReportBuilder, balances BalancesProvider, loc *time.Location) *MailService {
	var sender Sender
	if cfg.Host != "" {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	if loc == nil {
		loc = time.Local
	}

	return &MailService{
		log:      log,
		cfg:      cfg,
		sender:   sender,
		reports:  reports,
		balances: balances,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *MailService) Enabled() bool {
	return s.sender != nil && s.cfg.To != ""
}

// SendDailyReport mails the ledger of the current day with the workbook
// attached. Without SMTP settings it does nothing.
func (s *MailService) SendDailyReport(ctx context.Context) error {
	const op = "service.notify.SendDailyReport"

	if !s.Enabled() {
		s.log.Debug("mail is not configured, daily report skipped", slog.String("op", op))
		return nil
	}

	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, s.loc)

	data, err := s.reports.TransactionsReport(ctx, from, to)
	if err != nil {
		return fmt.Errorf("%s: build report: %w", op, err)
	}

	b, err := s.balances.GetBalances(ctx)
	if err != nil {
		return fmt.Errorf("%s: balances: %w", op, err)
	}

	day := from.Format("02.01.2006")
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", "Каса за "+day)
	m.SetBody("text/plain", fmt.Sprintf("Залишок на %s\nГотівка: %.2f\nКартка: %.2f\nРазом: %.2f\n",
		day, b.Cash, b.Card, b.Total))
	m.Attach("kasa-"+from.Format("2006-01-02")+".xlsx", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}

	s.log.Info("daily report sent", slog.String("to", s.cfg.To))

	return nil
}

func (s *MailService) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}
