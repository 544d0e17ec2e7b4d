package importer

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

type mockClaimRepo struct {
	claims map[string]*claim.Claim
	nextID uint
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{claims: make(map[string]*claim.Claim)}
}

func (m *mockClaimRepo) Create(_ context.Context, c *claim.Claim) error {
	if _, ok := m.claims[c.ClaimID]; ok {
		return claim.ErrDuplicateClaimID
	}
	m.nextID++
	c.ID = m.nextID
	m.claims[c.ClaimID] = c
	return nil
}

func (m *mockClaimRepo) GetByID(_ context.Context, id uint) (*claim.Claim, error) {
	for _, c := range m.claims {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, claim.ErrClaimNotFound
}

func (m *mockClaimRepo) Save(_ context.Context, c *claim.Claim) error {
	m.claims[c.ClaimID] = c
	return nil
}

func (m *mockClaimRepo) Delete(_ context.Context, id uint) error {
	for key, c := range m.claims {
		if c.ID == id {
			delete(m.claims, key)
			return nil
		}
	}
	return claim.ErrClaimNotFound
}

func (m *mockClaimRepo) List(_ context.Context, _ *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	all, _ := m.All(context.Background())
	return &claim.PagedClaims{Claims: all, TotalCount: int64(len(all))}, nil
}

func (m *mockClaimRepo) All(_ context.Context) ([]*claim.Claim, error) {
	out := make([]*claim.Claim, 0, len(m.claims))
	for _, c := range m.claims {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockClaimRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.claims)), nil
}

func (m *mockClaimRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.claims))
	m.claims = make(map[string]*claim.Claim)
	return n, nil
}

var testCollector = metrics.NewCollector("importer_test")

func newTestImporter(repo claim.Repository) *Importer {
	return New(repo, testCollector, zap.NewNop())
}

const csvHeader = "claim_id,patient_name,uhid_ip_no,tpa_name,parent_insurance,date_of_discharge,bill_amount,approved_amount,amount_settled_in_ac\n"

func TestImportCSV_Append(t *testing.T) {
	repo := newMockClaimRepo()
	im := newTestImporter(repo)

	input := csvHeader +
		"CLM-1,Asha Verma,UHID-1,MediAssist,Star Health,15/08/2023,\"50,000\",42000,40000\n" +
		"CLM-2,Ravi Iyer,UHID-2,Paramount,HDFC Ergo,03/09/2023,30000,28000,\n"

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), ModeAppend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no row errors, got %v", result.Errors)
	}

	c := repo.claims["CLM-1"]
	if c == nil {
		t.Fatal("CLM-1 not imported")
	}
	if c.BillAmount != 50000 {
		t.Errorf("expected bill 50000, got %v", c.BillAmount)
	}
	if c.Month != "2023-08" {
		t.Errorf("expected month 2023-08, got %q", c.Month)
	}
	if c.DifferenceAmount != 2000 {
		t.Errorf("expected difference 2000, got %v", c.DifferenceAmount)
	}
	if c.TotalSettledAmount != 40000 {
		t.Errorf("expected settled 40000, got %v", c.TotalSettledAmount)
	}
}

func TestImportCSV_RowErrorsDoNotAbort(t *testing.T) {
	repo := newMockClaimRepo()
	im := newTestImporter(repo)

	input := csvHeader +
		"CLM-1,Asha Verma,UHID-1,MediAssist,Star Health,15/08/2023,50000,42000,\n" +
		",No ClaimID,UHID-2,,,,20000,18000,\n" + // missing claim_id
		"CLM-3,Meera Shah,UHID-3,FHPL,ICICI Lombard,bad-date,....,25000,\n" + // unparseable bill
		"CLM-4,Vikram Rao,UHID-4,MediAssist,Star Health,01/10/2023,15000,14000,\n"

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), ModeAppend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Row != 3 {
		t.Errorf("expected first error on row 3, got %d", result.Errors[0].Row)
	}
	if result.Errors[1].Row != 4 {
		t.Errorf("expected second error on row 4, got %d", result.Errors[1].Row)
	}
	if repo.claims["CLM-4"] == nil {
		t.Error("row after a failed one must still import")
	}
}

func TestImportCSV_ReplaceAllClearsExisting(t *testing.T) {
	repo := newMockClaimRepo()
	seedClaim(t, repo, "OLD-1")
	seedClaim(t, repo, "OLD-2")

	im := newTestImporter(repo)
	input := csvHeader +
		"CLM-1,Asha Verma,UHID-1,MediAssist,Star Health,15/08/2023,50000,42000,\n"

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), ModeReplaceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cleared != 2 {
		t.Errorf("expected 2 cleared, got %d", result.Cleared)
	}
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
	if repo.claims["OLD-1"] != nil {
		t.Error("replace-all must remove pre-existing claims")
	}
}

func TestImportCSV_AppendKeepsExisting(t *testing.T) {
	repo := newMockClaimRepo()
	seedClaim(t, repo, "OLD-1")

	im := newTestImporter(repo)
	input := csvHeader +
		"CLM-1,Asha Verma,UHID-1,MediAssist,Star Health,15/08/2023,50000,42000,\n" +
		"OLD-1,Duplicate,UHID-9,MediAssist,Star Health,15/08/2023,1000,900,\n"

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), ModeAppend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cleared != 0 {
		t.Errorf("append must not clear, got %d", result.Cleared)
	}
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected duplicate row error, got %v", result.Errors)
	}
	if repo.claims["OLD-1"].PatientName == "Duplicate" {
		t.Error("existing claim must not be overwritten in append mode")
	}
}

func TestImportCSV_LenientDates(t *testing.T) {
	repo := newMockClaimRepo()
	im := newTestImporter(repo)

	// Unparseable discharge date imports with no month rather than failing.
	input := csvHeader +
		"CLM-1,Asha Verma,UHID-1,MediAssist,Star Health,someday,50000,42000,\n"

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), ModeAppend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d (%v)", result.Imported, result.Errors)
	}
	c := repo.claims["CLM-1"]
	if c.DateOfDischarge != nil {
		t.Error("expected nil discharge date")
	}
	if c.Month != "" {
		t.Errorf("expected empty month, got %q", c.Month)
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode(""); err == nil {
		t.Error("empty mode must be rejected; there is no default")
	}
	if _, err := ParseMode("replace"); err == nil {
		t.Error("unknown mode must be rejected")
	}
	if m, err := ParseMode("replace-all"); err != nil || m != ModeReplaceAll {
		t.Errorf("ParseMode(replace-all) = %v, %v", m, err)
	}
	if m, err := ParseMode("append"); err != nil || m != ModeAppend {
		t.Errorf("ParseMode(append) = %v, %v", m, err)
	}
}

func seedClaim(t *testing.T, repo *mockClaimRepo, claimID string) {
	t.Helper()
	err := repo.Create(context.Background(), &claim.Claim{
		ClaimID:        claimID,
		PatientName:    "Seed",
		UHIDIPNo:       "UHID-S",
		BillAmount:     100,
		ApprovedAmount: 90,
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", claimID, err)
	}
}
