package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
)

func newTestDashboardService(repo claim.Repository) *DashboardService {
	return NewDashboardService(repo, zap.NewNop())
}

func seedClaim(t *testing.T, repo *mockClaimRepo, c *claim.Claim) {
	t.Helper()
	c.Derive()
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seeding claim %s: %v", c.ClaimID, err)
	}
}

func TestSummary_EmptyTableYieldsZeros(t *testing.T) {
	svc := newTestDashboardService(newMockClaimRepo())

	stats, err := svc.Summary(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalClaims != 0 || stats.TotalBillAmount != 0 || stats.PendingClaims != 0 {
		t.Errorf("expected all-zero summary, got %+v", stats)
	}
}

func TestSummary_SumsAndPendingBucket(t *testing.T) {
	repo := newMockClaimRepo()
	settled := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)

	seedClaim(t, repo, &claim.Claim{
		ClaimID: "CLM-1", PatientName: "A", UHIDIPNo: "U1",
		BillAmount: 50000, ApprovedAmount: 42000, TotalSettledAmount: 40000,
		TDS: 500, ConsumableDeduction: 1200, PaidByPatient: 300,
		SettlementDate: &settled,
	})
	seedClaim(t, repo, &claim.Claim{
		ClaimID: "CLM-2", PatientName: "B", UHIDIPNo: "U2",
		BillAmount: 30000, ApprovedAmount: 28000,
	})

	svc := newTestDashboardService(repo)
	stats, err := svc.Summary(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalClaims != 2 {
		t.Errorf("expected 2 claims, got %d", stats.TotalClaims)
	}
	if stats.TotalBillAmount != 80000 {
		t.Errorf("expected bill sum 80000, got %v", stats.TotalBillAmount)
	}
	if stats.TotalApprovedAmount != 70000 {
		t.Errorf("expected approved sum 70000, got %v", stats.TotalApprovedAmount)
	}
	if stats.TotalSettledAmount != 40000 {
		t.Errorf("expected settled sum 40000, got %v", stats.TotalSettledAmount)
	}
	if stats.TotalTDS != 500 {
		t.Errorf("expected TDS sum 500, got %v", stats.TotalTDS)
	}
	if stats.PendingClaims != 1 {
		t.Errorf("expected 1 pending claim, got %d", stats.PendingClaims)
	}
}

func TestMonthWise_GroupsAscendingAndSkipsBlank(t *testing.T) {
	repo := newMockClaimRepo()
	mar := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)

	seedClaim(t, repo, &claim.Claim{ClaimID: "CLM-1", PatientName: "A", UHIDIPNo: "U1",
		DateOfDischarge: &mar, BillAmount: 100, ApprovedAmount: 90})
	seedClaim(t, repo, &claim.Claim{ClaimID: "CLM-2", PatientName: "B", UHIDIPNo: "U2",
		DateOfDischarge: &mar, BillAmount: 200, ApprovedAmount: 180})
	seedClaim(t, repo, &claim.Claim{ClaimID: "CLM-3", PatientName: "C", UHIDIPNo: "U3",
		DateOfDischarge: &feb, BillAmount: 50, ApprovedAmount: 40})
	// No discharge date, so no month: excluded from the report.
	seedClaim(t, repo, &claim.Claim{ClaimID: "CLM-4", PatientName: "D", UHIDIPNo: "U4",
		BillAmount: 999, ApprovedAmount: 999})

	svc := newTestDashboardService(repo)
	stats, err := svc.MonthWise(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stats) != 2 {
		t.Fatalf("expected 2 month groups, got %d", len(stats))
	}
	if stats[0].Month != "2024-02" || stats[1].Month != "2024-03" {
		t.Errorf("expected ascending months [2024-02 2024-03], got [%s %s]", stats[0].Month, stats[1].Month)
	}
	if stats[1].ClaimCount != 2 || stats[1].TotalBill != 300 {
		t.Errorf("unexpected March group: %+v", stats[1])
	}
}

func TestMonthWise_SkipsCorruptMonth(t *testing.T) {
	repo := newMockClaimRepo()
	mar := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	seedClaim(t, repo, &claim.Claim{ClaimID: "CLM-1", PatientName: "A", UHIDIPNo: "U1",
		DateOfDischarge: &mar, BillAmount: 100, ApprovedAmount: 90})

	// Corrupt a stored month directly, bypassing derivation.
	for _, c := range repo.claims {
		c.Month = "garbage"
	}

	svc := newTestDashboardService(repo)
	stats, err := svc.MonthWise(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected corrupt month skipped, got %+v", stats)
	}
}

func TestCompanyWise_RanksBothDimensions(t *testing.T) {
	repo := newMockClaimRepo()
	for i := 0; i < 3; i++ {
		seedClaim(t, repo, &claim.Claim{
			ClaimID: fmt.Sprintf("MA-%d", i), PatientName: "P", UHIDIPNo: "U",
			TPAName: "MediAssist", ParentInsurance: "Star Health",
			BillAmount: 1000, ApprovedAmount: 900, TotalSettledAmount: 800,
		})
	}
	seedClaim(t, repo, &claim.Claim{
		ClaimID: "PM-1", PatientName: "P", UHIDIPNo: "U",
		TPAName: "Paramount", ParentInsurance: "HDFC Ergo",
		BillAmount: 5000, ApprovedAmount: 4000, TotalSettledAmount: 3500,
	})
	// Blank company names never rank.
	seedClaim(t, repo, &claim.Claim{
		ClaimID: "NN-1", PatientName: "P", UHIDIPNo: "U",
		BillAmount: 9000, ApprovedAmount: 8000,
	})

	svc := newTestDashboardService(repo)
	stats, err := svc.CompanyWise(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stats.TPA) != 2 {
		t.Fatalf("expected 2 TPA entries, got %d", len(stats.TPA))
	}
	if stats.TPA[0].Name != "Paramount" {
		t.Errorf("expected Paramount ranked first by approved sum, got %s", stats.TPA[0].Name)
	}
	if stats.TPA[1].Name != "MediAssist" || stats.TPA[1].ClaimCount != 3 || stats.TPA[1].TotalApproved != 2700 {
		t.Errorf("unexpected MediAssist entry: %+v", stats.TPA[1])
	}

	if len(stats.Insurance) != 2 {
		t.Fatalf("expected 2 insurance entries, got %d", len(stats.Insurance))
	}
	if stats.Insurance[0].Name != "HDFC Ergo" {
		t.Errorf("expected HDFC Ergo first, got %s", stats.Insurance[0].Name)
	}
}

func TestCompanyWise_TruncatesToTopTen(t *testing.T) {
	repo := newMockClaimRepo()
	for i := 0; i < 12; i++ {
		seedClaim(t, repo, &claim.Claim{
			ClaimID: fmt.Sprintf("CLM-%d", i), PatientName: "P", UHIDIPNo: "U",
			TPAName:    fmt.Sprintf("TPA-%02d", i),
			BillAmount: 100, ApprovedAmount: float64(100 + i),
		})
	}

	svc := newTestDashboardService(repo)
	stats, err := svc.CompanyWise(context.Background(), managerIdent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.TPA) != 10 {
		t.Fatalf("expected top 10, got %d", len(stats.TPA))
	}
	// Highest approved sum first; the two lowest TPAs fall off.
	if stats.TPA[0].Name != "TPA-11" {
		t.Errorf("expected TPA-11 first, got %s", stats.TPA[0].Name)
	}
	for _, entry := range stats.TPA {
		if entry.Name == "TPA-00" || entry.Name == "TPA-01" {
			t.Errorf("%s should have been truncated", entry.Name)
		}
	}
}

func TestDashboard_DataEntryForbidden(t *testing.T) {
	svc := newTestDashboardService(newMockClaimRepo())
	clerk := dataEntryIdent()

	if _, err := svc.Summary(context.Background(), clerk); !errors.Is(err, ErrForbidden) {
		t.Errorf("Summary: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.MonthWise(context.Background(), clerk); !errors.Is(err, ErrForbidden) {
		t.Errorf("MonthWise: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.CompanyWise(context.Background(), clerk); !errors.Is(err, ErrForbidden) {
		t.Errorf("CompanyWise: expected ErrForbidden, got %v", err)
	}
}
