package reporting

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/internal/cases"
	"github.com/lexpro/backoffice/pkg/models"
)

// Source is the read side of the persistence gateway.
//
//go:generate mockgen -destination=mocks/mock_source.go -source=loader.go Source
type Source interface {
	ListCases(ctx context.Context) ([]models.Case, error)
	ListLawyers(ctx context.Context) ([]models.Lawyer, error)
	ListClients(ctx context.Context) ([]models.Client, error)
}

// Snapshot is everything a report view reads.
type Snapshot struct {
	Cases   []models.Case
	Lawyers []models.Lawyer
	Clients []models.Client
}

// Loader reads collections through the cache.
type Loader struct {
	src   Source
	cache *cache.Cache
}

func NewLoader(src Source, c *cache.Cache) *Loader {
	return &Loader{src: src, cache: c}
}

func (l *Loader) Cases(ctx context.Context) ([]models.Case, error) {
	return cache.Remember(ctx, l.cache, cache.Cases, l.src.ListCases)
}

func (l *Loader) Lawyers(ctx context.Context) ([]models.Lawyer, error) {
	return cache.Remember(ctx, l.cache, cache.Lawyers, l.src.ListLawyers)
}

func (l *Loader) Clients(ctx context.Context) ([]models.Client, error) {
	return cache.Remember(ctx, l.cache, cache.Clients, l.src.ListClients)
}

// Snapshot loads cases, lawyers and clients concurrently. The first error
// cancels the other reads and nothing partial is returned.
func (l *Loader) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Cases, err = l.Cases(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Lawyers, err = l.Lawyers(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Clients, err = l.Clients(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

/* =============================== Dashboard ============================== */

type RecentCase struct {
	ID          uuid.UUID         `json:"id"`
	CaseNumber  string            `json:"case_number"`
	ClientName  string            `json:"client_name"`
	Status      models.CaseStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Lawyers     cases.LawyerView  `json:"lawyers"`
}

type Dashboard struct {
	Summary
	TotalLawyers  int             `json:"total_lawyers"`
	ActiveLawyers int             `json:"active_lawyers"`
	TotalClients  int             `json:"total_clients"`
	Recent        []RecentCase    `json:"recent_cases"`
	Series        []MonthBucket   `json:"monthly_series"`
	Distribution  []CategoryCount `json:"service_distribution"`
	TopLawyers    []RankingRow    `json:"top_lawyers"`
}

const recentCases = 5

// Dashboard is cached under its own key and dropped with every mutation.
func (l *Loader) Dashboard(ctx context.Context) (Dashboard, error) {
	return cache.Remember(ctx, l.cache, cache.Dashboard, func(ctx context.Context) (Dashboard, error) {
		s, err := l.Snapshot(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		return BuildDashboard(s), nil
	})
}

func BuildDashboard(s Snapshot) Dashboard {
	d := Dashboard{
		Summary:      Summarize(s.Cases),
		TotalLawyers: len(s.Lawyers),
		TotalClients: len(s.Clients),
		Recent:       make([]RecentCase, 0, recentCases),
		Series:       MonthlySeries(s.Cases),
		Distribution: ServiceDistribution(s.Cases),
	}
	for _, lw := range s.Lawyers {
		if lw.Status == models.LawyerActive {
			d.ActiveLawyers++
		}
	}
	for i, cs := range s.Cases {
		if i == recentCases {
			break
		}
		rc := RecentCase{ID: cs.ID, CaseNumber: cs.CaseNumber, Status: cs.Status, TotalAmount: cs.TotalAmount, Lawyers: cases.ResolveLawyerView(cs)}
		if cs.Client != nil {
			rc.ClientName = cs.Client.Name
		}
		d.Recent = append(d.Recent, rc)
	}
	ranking := RankLawyers(s.Cases)
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}
	d.TopLawyers = ranking
	return d
}
