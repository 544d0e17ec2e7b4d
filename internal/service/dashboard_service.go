package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
)

const companyRankingSize = 10

// DashboardService computes the three manager reports. Each call is a full
// scan over the claim table with no cached state; correctness of the
// recompute-per-call semantics matters more than throughput at the scale
// this system runs at.
type DashboardService struct {
	repo claim.Repository
	log  *zap.Logger
}

func NewDashboardService(repo claim.Repository, log *zap.Logger) *DashboardService {
	return &DashboardService{repo: repo, log: log}
}

// Summary sums the headline monetary columns and counts claims with no
// settlement date as the single pending bucket. Empty table yields zeros.
func (s *DashboardService) Summary(ctx context.Context, ident domain.Identity) (*claim.SummaryStats, error) {
	if !ident.Role.Can(domain.OpDashboardView) {
		return nil, ErrForbidden
	}

	claims, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &claim.SummaryStats{}
	for _, c := range claims {
		stats.TotalClaims++
		stats.TotalBillAmount += c.BillAmount
		stats.TotalApprovedAmount += c.ApprovedAmount
		stats.TotalSettledAmount += c.TotalSettledAmount
		stats.TotalTDS += c.TDS
		stats.TotalConsumableDeduction += c.ConsumableDeduction
		stats.TotalPaidByPatient += c.PaidByPatient
		if !c.IsSettled() {
			stats.PendingClaims++
		}
	}
	return stats, nil
}

// MonthWise groups by the derived month key, ascending. Claims with an
// absent month are excluded; a month that fails to parse as YYYY-MM is
// skipped rather than failing the whole report.
func (s *DashboardService) MonthWise(ctx context.Context, ident domain.Identity) ([]claim.MonthlyStats, error) {
	if !ident.Role.Can(domain.OpDashboardView) {
		return nil, ErrForbidden
	}

	claims, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*claim.MonthlyStats)
	for _, c := range claims {
		if c.Month == "" {
			continue
		}
		if _, err := time.Parse("2006-01", c.Month); err != nil {
			s.log.Warn("skipping unparseable month group", zap.String("month", c.Month))
			continue
		}
		g, ok := groups[c.Month]
		if !ok {
			g = &claim.MonthlyStats{Month: c.Month}
			groups[c.Month] = g
		}
		g.ClaimCount++
		g.TotalBill += c.BillAmount
		g.TotalApproved += c.ApprovedAmount
		g.TotalSettled += c.TotalSettledAmount
		g.TotalTDS += c.TDS
	}

	result := make([]claim.MonthlyStats, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

// CompanyWise ranks the top companies by summed approved amount, once by
// TPA and once by parent insurer. Blank group keys are excluded.
func (s *DashboardService) CompanyWise(ctx context.Context, ident domain.Identity) (*claim.CompanyStats, error) {
	if !ident.Role.Can(domain.OpDashboardView) {
		return nil, ErrForbidden
	}

	claims, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	return &claim.CompanyStats{
		TPA:       rankCompanies(claims, func(c *claim.Claim) string { return c.TPAName }),
		Insurance: rankCompanies(claims, func(c *claim.Claim) string { return c.ParentInsurance }),
	}, nil
}

func rankCompanies(claims []*claim.Claim, key func(*claim.Claim) string) []claim.CompanyEntry {
	groups := make(map[string]*claim.CompanyEntry)
	for _, c := range claims {
		name := key(c)
		if name == "" {
			continue
		}
		g, ok := groups[name]
		if !ok {
			g = &claim.CompanyEntry{Name: name}
			groups[name] = g
		}
		g.ClaimCount++
		g.TotalApproved += c.ApprovedAmount
		g.TotalSettled += c.TotalSettledAmount
	}

	ranked := make([]claim.CompanyEntry, 0, len(groups))
	for _, g := range groups {
		ranked = append(ranked, *g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalApproved != ranked[j].TotalApproved {
			return ranked[i].TotalApproved > ranked[j].TotalApproved
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > companyRankingSize {
		ranked = ranked[:companyRankingSize]
	}
	return ranked
}
