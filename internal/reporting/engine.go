// Package reporting folds the case collection into dashboard, ledger,
// ranking and series aggregates. Everything is recomputed per read.
package reporting

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexpro/backoffice/internal/cases"
	"github.com/lexpro/backoffice/pkg/models"
)

const noService = "Sin servicio"

var hundred = decimal.NewFromInt(100)

/* =============================== Summary ================================ */

type Summary struct {
	TotalContracted      decimal.Decimal `json:"total_contracted"`
	TotalCommissionsPaid decimal.Decimal `json:"total_commissions_paid"`
	PendingCommissions   decimal.Decimal `json:"pending_commissions"`
	NetRemainder         decimal.Decimal `json:"net_remainder"`
	LiquidationProgress  decimal.Decimal `json:"liquidation_progress"`
	ActiveCases          int             `json:"active_cases"`
	CompletedCases       int             `json:"completed_cases"`
	TotalCases           int             `json:"total_cases"`
}

// Summarize computes the firm-wide totals. NetRemainder subtracts paid
// commissions only.
func Summarize(all []models.Case) Summary {
	s := Summary{
		TotalContracted:      decimal.Zero,
		TotalCommissionsPaid: decimal.Zero,
		PendingCommissions:   decimal.Zero,
		TotalCases:           len(all),
	}
	for _, cs := range all {
		s.TotalContracted = s.TotalContracted.Add(cs.TotalAmount)
		switch cs.Status {
		case models.CaseActive, models.CaseInProgress:
			s.ActiveCases++
		case models.CaseCompleted:
			s.CompletedCases++
		}
		for _, a := range cases.Normalize(cs) {
			if !a.CommissionAmount.IsPositive() {
				continue
			}
			if a.CommissionPaid {
				s.TotalCommissionsPaid = s.TotalCommissionsPaid.Add(a.CommissionAmount)
			} else {
				s.PendingCommissions = s.PendingCommissions.Add(a.CommissionAmount)
			}
		}
	}
	s.NetRemainder = s.TotalContracted.Sub(s.TotalCommissionsPaid)
	s.LiquidationProgress = progress(s.TotalCommissionsPaid, s.PendingCommissions)
	return s
}

// progress is paid / (paid + pending) as a percentage with two decimals.
func progress(paid, pending decimal.Decimal) decimal.Decimal {
	den := paid.Add(pending)
	if !den.IsPositive() {
		return decimal.Zero
	}
	return paid.Mul(hundred).Div(den).Round(2)
}

/* =============================== Ranking ================================ */

type RankingRow struct {
	LawyerID        uuid.UUID       `json:"lawyer_id"`
	Name            string          `json:"name"`
	CasesCount      int             `json:"cases_count"`
	Contracted      decimal.Decimal `json:"contracted"`
	Commissions     decimal.Decimal `json:"commissions"`
	CommissionsPaid decimal.Decimal `json:"commissions_paid"`
	CobradoNeto     decimal.Decimal `json:"cobrado_neto"`
}

// RankLawyers groups allocations by lawyer. A co-assigned lawyer counts the
// full case total. Rows are sorted by Contracted descending; ties keep the
// order in which lawyers were first seen.
func RankLawyers(all []models.Case) []RankingRow {
	idx := map[uuid.UUID]int{}
	rows := []RankingRow{}

	for _, cs := range all {
		for _, a := range cases.Normalize(cs) {
			i, ok := idx[a.LawyerID]
			if !ok {
				i = len(rows)
				idx[a.LawyerID] = i
				rows = append(rows, RankingRow{
					LawyerID:        a.LawyerID,
					Name:            a.LawyerName,
					Contracted:      decimal.Zero,
					Commissions:     decimal.Zero,
					CommissionsPaid: decimal.Zero,
				})
			}
			r := &rows[i]
			if r.Name == "" {
				r.Name = a.LawyerName
			}
			r.CasesCount++
			r.Contracted = r.Contracted.Add(cs.TotalAmount)
			r.Commissions = r.Commissions.Add(a.CommissionAmount)
			if a.CommissionPaid {
				r.CommissionsPaid = r.CommissionsPaid.Add(a.CommissionAmount)
			}
		}
	}

	for i := range rows {
		rows[i].CobradoNeto = rows[i].Contracted.Sub(rows[i].Commissions)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Contracted.GreaterThan(rows[j].Contracted)
	})
	return rows
}

// RankingTotals sums a ranking into a single footer row.
func RankingTotals(rows []RankingRow) RankingRow {
	t := RankingRow{
		Name:            "TOTALES",
		Contracted:      decimal.Zero,
		Commissions:     decimal.Zero,
		CommissionsPaid: decimal.Zero,
		CobradoNeto:     decimal.Zero,
	}
	for _, r := range rows {
		t.CasesCount += r.CasesCount
		t.Contracted = t.Contracted.Add(r.Contracted)
		t.Commissions = t.Commissions.Add(r.Commissions)
		t.CommissionsPaid = t.CommissionsPaid.Add(r.CommissionsPaid)
		t.CobradoNeto = t.CobradoNeto.Add(r.CobradoNeto)
	}
	return t
}

/* ================================ Series ================================ */

type MonthBucket struct {
	Month       string          `json:"month"` // YYYY-MM
	Revenue     decimal.Decimal `json:"revenue"`
	Commissions decimal.Decimal `json:"commissions"`
}

func monthKey(cs models.Case) string {
	if !cs.StartDate.IsZero() {
		return cs.StartDate.Format("2006-01")
	}
	return cs.CreatedAt.Format("2006-01")
}

// MonthlySeries buckets cases by start month, in chronological order.
func MonthlySeries(all []models.Case) []MonthBucket {
	byMonth := map[string]*MonthBucket{}
	for _, cs := range all {
		k := monthKey(cs)
		b, ok := byMonth[k]
		if !ok {
			b = &MonthBucket{Month: k, Revenue: decimal.Zero, Commissions: decimal.Zero}
			byMonth[k] = b
		}
		b.Revenue = b.Revenue.Add(cs.TotalAmount)
		b.Commissions = b.Commissions.Add(cases.ResolveLawyerView(cs).TotalCommission)
	}

	out := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

/* ============================= Distribution ============================= */

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ServiceDistribution counts cases per service name.
func ServiceDistribution(all []models.Case) []CategoryCount {
	counts := map[string]int{}
	for _, cs := range all {
		name := noService
		if cs.Service != nil && strings.TrimSpace(cs.Service.Name) != "" {
			name = cs.Service.Name
		}
		counts[name]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, CategoryCount{Name: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

/* ================================ Ledger ================================ */

type LedgerLine struct {
	cases.Allocation
	CaseNumber  string          `json:"case_number"`
	ClientName  string          `json:"client_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// LedgerFilter narrows the lines; totals always cover the whole ledger.
type LedgerFilter struct {
	Status string // "", "all", "paid", "pending"
	Search string
}

type Ledger struct {
	Lines        []LedgerLine    `json:"lines"`
	Count        int             `json:"count"`
	TotalAll     decimal.Decimal `json:"total_all"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
	Progress     decimal.Decimal `json:"progress"`
}

// BuildLedger lists every allocation with a positive commission.
func BuildLedger(all []models.Case, f LedgerFilter) Ledger {
	l := Ledger{
		Lines:        []LedgerLine{},
		TotalAll:     decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))

	for _, cs := range all {
		client := ""
		if cs.Client != nil {
			client = cs.Client.Name
		}
		for _, a := range cases.Normalize(cs) {
			if !a.CommissionAmount.IsPositive() {
				continue
			}
			l.Count++
			l.TotalAll = l.TotalAll.Add(a.CommissionAmount)
			if a.CommissionPaid {
				l.PaidCount++
				l.TotalPaid = l.TotalPaid.Add(a.CommissionAmount)
			} else {
				l.PendingCount++
				l.TotalPending = l.TotalPending.Add(a.CommissionAmount)
			}

			line := LedgerLine{Allocation: a, CaseNumber: cs.CaseNumber, ClientName: client, TotalAmount: cs.TotalAmount}
			if f.keep(line, q) {
				l.Lines = append(l.Lines, line)
			}
		}
	}
	l.Progress = progress(l.TotalPaid, l.TotalPending)
	return l
}

func (f LedgerFilter) keep(line LedgerLine, q string) bool {
	switch f.Status {
	case "paid":
		if !line.CommissionPaid {
			return false
		}
	case "pending":
		if line.CommissionPaid {
			return false
		}
	}
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line.CaseNumber), q) ||
		strings.Contains(strings.ToLower(line.LawyerName), q) ||
		strings.Contains(strings.ToLower(line.ClientName), q)
}

// Split separates a ledger's lines into pending and paid.
func (l Ledger) Split() (pending, paid []LedgerLine) {
	pending, paid = []LedgerLine{}, []LedgerLine{}
	for _, line := range l.Lines {
		if line.CommissionPaid {
			paid = append(paid, line)
		} else {
			pending = append(pending, line)
		}
	}
	return pending, paid
}

/* ================================ Period ================================ */

// FilterByPeriod keeps cases whose start date falls within [from, to].
// A zero bound is open.
func FilterByPeriod(all []models.Case, from, to time.Time) []models.Case {
	if from.IsZero() && to.IsZero() {
		return all
	}
	out := make([]models.Case, 0, len(all))
	for _, cs := range all {
		d := dateOnly(cs.StartDate)
		if !from.IsZero() && d.Before(dateOnly(from)) {
			continue
		}
		if !to.IsZero() && d.After(dateOnly(to)) {
			continue
		}
		out = append(out, cs)
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LawyerCases returns the lawyer's ranking row and one line per case they
// are allocated to. ok is false when the lawyer has no allocations.
func LawyerCases(all []models.Case, lawyerID uuid.UUID) (row RankingRow, lines []LedgerLine, ok bool) {
	mine := []models.Case{}
	lines = []LedgerLine{}
	for _, cs := range all {
		for _, a := range cases.Normalize(cs) {
			if a.LawyerID != lawyerID {
				continue
			}
			mine = append(mine, cs)
			client := ""
			if cs.Client != nil {
				client = cs.Client.Name
			}
			lines = append(lines, LedgerLine{Allocation: a, CaseNumber: cs.CaseNumber, ClientName: client, TotalAmount: cs.TotalAmount})
		}
	}
	for _, r := range RankLawyers(mine) {
		if r.LawyerID == lawyerID {
			return r, lines, true
		}
	}
	return RankingRow{}, lines, false
}
