package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/config"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// alertQuietPeriod is how long an unchanged alert is not repeated
const alertQuietPeriod = 24 * time.Hour

// EmailAlerter mails a risk alert when an update raises the DSCR or
// occupancy flag. The same alert for a deal is sent once per quiet period.
type EmailAlerter struct {
	cfg    *config.Config
	logger *logrus.Logger
	sent   *cache.Cache
	send   func(e *email.Email) error
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg *config.Config, logger *logrus.Logger) *EmailAlerter {
	a := &EmailAlerter{
		cfg:    cfg,
		logger: logger,
		sent:   cache.New(alertQuietPeriod, time.Hour),
	}
	a.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
		auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
		return e.Send(addr, auth)
	}
	return a
}

// Publish mails an alert in the background if u carries a new risk
func (a *EmailAlerter) Publish(_ context.Context, u models.KPIUpdate) error {
	key := strconv.FormatInt(u.DealID, 10)
	risks := riskSummary(u.KPIs)
	if len(risks) == 0 {
		a.sent.Delete(key)
		return nil
	}
	signature := strings.Join(risks, ",")
	if prev, found := a.sent.Get(key); found && prev.(string) == signature {
		return nil
	}
	a.sent.SetDefault(key, signature)

	e := a.buildAlert(u, risks)
	go func() {
		if err := a.send(e); err != nil {
			a.sent.Delete(key)
			a.logger.Errorf("Failed to send risk alert for deal %d: %v", u.DealID, err)
			return
		}
		a.logger.Infof("Email sent to %s: %s", strings.Join(e.To, ","), e.Subject)
	}()
	return nil
}

func riskSummary(k models.DealKPIs) []string {
	var risks []string
	if k.DSCRWarning {
		risks = append(risks, "dscr")
	}
	if k.OccupancyRisk {
		risks = append(risks, "occupancy")
	}
	return risks
}

func (a *EmailAlerter) buildAlert(u models.KPIUpdate, risks []string) *email.Email {
	e := email.NewEmail()
	e.From = a.cfg.SenderEmail
	e.To = []string{a.cfg.AlertEmail}
	e.Subject = fmt.Sprintf("Deal %d risk alert", u.DealID)

	body := fmt.Sprintf("Deal %d was recalculated at %s.\n\n", u.DealID, time.Now().Format("2006-01-02 15:04:05"))
	for _, r := range risks {
		switch r {
		case "dscr":
			body += fmt.Sprintf(
				"Debt service coverage is %.2fx (NOI %.2f against annual debt service %.2f).\n",
				u.KPIs.DSCR, u.KPIs.NetOperatingIncome, u.KPIs.AnnualDebtService,
			)
		case "occupancy":
			body += fmt.Sprintf(
				"Break-even occupancy is %.1f%%, leaving little room for vacancy.\n",
				u.KPIs.BreakEvenOccupancy*100,
			)
		}
	}
	body += "\nPortfolio Analytics"
	e.Text = []byte(body)
	return e
}
