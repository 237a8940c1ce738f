package notify

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/reporting"
	"github.com/lexpro/backoffice/pkg/format"
	"github.com/lexpro/backoffice/pkg/models"
)

// ErrNoSender is returned when a report should go out but no email
// provider is configured.
var ErrNoSender = errors.New("notify: email provider is not configured")

// CaseSource serves the preloaded case collection.
type CaseSource interface {
	Cases(ctx context.Context) ([]models.Case, error)
}

const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
)

type Result struct {
	Status    string     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	To        string     `json:"to,omitempty"`
	MessageID string     `json:"message_id,omitempty"`
	Lawyers   int        `json:"lawyers"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

var reportTmpl = template.Must(template.New("weekly").Funcs(template.FuncMap{
	"money": format.Currency,
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<div style="font-family:Arial,sans-serif;max-width:800px;margin:0 auto;">
  <h2 style="color:#292524;">Reporte Semanal de Rendimiento</h2>
  <p style="color:#78716c;font-size:14px;">Generado: {{.Date}}</p>
  <table style="width:100%;border-collapse:collapse;font-size:13px;">
    <thead>
      <tr style="background:#292524;color:#fff;">
        <th style="padding:10px;">#</th>
        <th style="padding:10px;text-align:left;">Profesional</th>
        <th style="padding:10px;">Casos</th>
        <th style="padding:10px;text-align:right;">Contratado</th>
        <th style="padding:10px;text-align:right;">Comisiones</th>
        <th style="padding:10px;text-align:right;">Com. Pagadas</th>
        <th style="padding:10px;text-align:right;">Cobrado Neto</th>
      </tr>
    </thead>
    <tbody>
    {{- range $i, $r := .Rows}}
      <tr style="border-bottom:1px solid #e5e5e5;">
        <td style="padding:8px;text-align:center;">{{inc $i}}</td>
        <td style="padding:8px;">{{$r.Name}}</td>
        <td style="padding:8px;text-align:center;">{{$r.CasesCount}}</td>
        <td style="padding:8px;text-align:right;">{{money $r.Contracted}}</td>
        <td style="padding:8px;text-align:right;">{{money $r.Commissions}}</td>
        <td style="padding:8px;text-align:right;">{{money $r.CommissionsPaid}}</td>
        <td style="padding:8px;text-align:right;">{{money $r.CobradoNeto}}</td>
      </tr>
    {{- end}}
    </tbody>
    <tfoot>
      <tr style="background:#f5f5f4;font-weight:bold;">
        <td style="padding:10px;" colspan="2">{{.Totals.Name}}</td>
        <td style="padding:10px;text-align:center;">{{.Totals.CasesCount}}</td>
        <td style="padding:10px;text-align:right;">{{money .Totals.Contracted}}</td>
        <td style="padding:10px;text-align:right;">{{money .Totals.Commissions}}</td>
        <td style="padding:10px;text-align:right;">{{money .Totals.CommissionsPaid}}</td>
        <td style="padding:10px;text-align:right;">{{money .Totals.CobradoNeto}}</td>
      </tr>
    </tfoot>
  </table>
</div>
`))

// RenderReport renders the ranking as the weekly email body.
func RenderReport(rows []reporting.RankingRow, at time.Time) (string, error) {
	var buf bytes.Buffer
	err := reportTmpl.Execute(&buf, struct {
		Date   string
		Rows   []reporting.RankingRow
		Totals reporting.RankingRow
	}{
		Date:   at.Format("02/01/2006"),
		Rows:   rows,
		Totals: reporting.RankingTotals(rows),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Reporter builds and sends the weekly performance email.
type Reporter struct {
	settings SettingsStore
	cases    CaseSource
	sender   Sender
	from     string
	log      *zap.Logger
	now      func() time.Time
}

// NewReporter accepts a nil sender; sending then fails with ErrNoSender.
func NewReporter(settings SettingsStore, cases CaseSource, sender Sender, from string, log *zap.Logger) *Reporter {
	return &Reporter{settings: settings, cases: cases, sender: sender, from: from, log: log, now: time.Now}
}

// SendWeeklyReport sends the ranking to the configured address. A disabled
// report or a missing address is a skip, not an error. Nothing is retried.
func (r *Reporter) SendWeeklyReport(ctx context.Context) (Result, error) {
	st, err := LoadSettings(ctx, r.settings)
	if err != nil {
		return Result{}, err
	}
	if !st.Enabled || st.Email == "" {
		r.log.Info("weekly report skipped", zap.Bool("enabled", st.Enabled), zap.Bool("has_email", st.Email != ""))
		return Result{Status: StatusSkipped, Reason: "Weekly report disabled or no email configured"}, nil
	}
	if r.sender == nil {
		return Result{}, ErrNoSender
	}

	all, err := r.cases.Cases(ctx)
	if err != nil {
		return Result{}, err
	}
	rows := reporting.RankLawyers(all)
	at := r.now()

	html, err := RenderReport(rows, at)
	if err != nil {
		return Result{}, err
	}
	id, err := r.sender.Send(ctx, Message{
		From:    r.from,
		To:      []string{st.Email},
		Subject: "Reporte Semanal de Rendimiento - " + at.Format("02/01/2006"),
		HTML:    html,
	})
	if err != nil {
		r.log.Error("weekly report failed", zap.String("to", st.Email), zap.Error(err))
		return Result{}, err
	}

	r.log.Info("weekly report sent", zap.String("to", st.Email), zap.String("message_id", id), zap.Int("lawyers", len(rows)))
	return Result{Status: StatusSent, To: st.Email, MessageID: id, Lawyers: len(rows), SentAt: &at}, nil
}
