package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

// Mode selects what happens to records that already exist. There is no
// default mode; callers must name one.
type Mode string

const (
	// ModeReplaceAll deletes every existing claim before importing.
	ModeReplaceAll Mode = "replace-all"
	// ModeAppend leaves existing claims in place; duplicates fail per row.
	ModeAppend Mode = "append"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReplaceAll, ModeAppend:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown import mode %q (want %q or %q)", s, ModeReplaceAll, ModeAppend)
}

// RowError records one rejected row; the pipeline never aborts on one.
type RowError struct {
	Row     int
	Message string
}

type Result struct {
	Imported int
	Cleared  int64
	Errors   []RowError
}

const progressEvery = 100

// Importer batch-loads claims from CSV. Rows are processed independently
// with per-row isolation: each validate+insert is atomic and a failure in
// row N does not affect rows committed before it.
type Importer struct {
	repo    claim.Repository
	metrics *metrics.Collector
	log     *zap.Logger
}

func New(repo claim.Repository, collector *metrics.Collector, log *zap.Logger) *Importer {
	return &Importer{repo: repo, metrics: collector, log: log}
}

func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, mode Mode) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	result := &Result{}

	if mode == ModeReplaceAll {
		existing, err := im.repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting existing claims: %w", err)
		}
		if existing > 0 {
			im.log.Warn("replace-all import: clearing existing claims",
				zap.Int64("existing", existing),
			)
			cleared, err := im.repo.DeleteAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("clearing existing claims: %w", err)
			}
			result.Cleared = cleared
		}
	}

	// Row 1 is the header.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			im.metrics.ImportRowErrors.Inc()
			continue
		}

		c, err := rowToClaim(record, cols)
		if err == nil {
			err = im.repo.Create(ctx, c)
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			im.metrics.ImportRowErrors.Inc()
			continue
		}

		result.Imported++
		im.metrics.ClaimsImportedTotal.Inc()
		if result.Imported%progressEvery == 0 {
			im.log.Info("import progress", zap.Int("imported", result.Imported))
		}
	}

	im.log.Info("import finished",
		zap.Int("imported", result.Imported),
		zap.Int("errors", len(result.Errors)),
		zap.Int64("cleared", result.Cleared),
	)

	return result, nil
}

// rowToClaim builds a validated, derived claim from one CSV row.
// Unparseable dates and amounts become absent rather than failing the row;
// only missing identity fields or amounts reject it.
func rowToClaim(record []string, cols map[string]int) (*claim.Claim, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	c := &claim.Claim{
		DateOfAdmission:      ParseDate(cell("date_of_admission")),
		DateOfDischarge:      ParseDate(cell("date_of_discharge")),
		TPAName:              cell("tpa_name"),
		ParentInsurance:      cell("parent_insurance"),
		ClaimID:              cell("claim_id"),
		UHIDIPNo:             cell("uhid_ip_no"),
		PatientName:          cell("patient_name"),
		UTRNumber:            cell("utr_number"),
		PhysicalFileDispatch: claim.DispatchPending,
	}

	bill := ParseAmount(cell("bill_amount"))
	approved := ParseAmount(cell("approved_amount"))
	missing := make(map[string]string)
	if bill == nil {
		missing["bill_amount"] = "missing or non-numeric"
	}
	if approved == nil {
		missing["approved_amount"] = "missing or non-numeric"
	}
	if len(missing) > 0 {
		return nil, &claim.ValidationError{Fields: missing}
	}
	c.BillAmount = *bill
	c.ApprovedAmount = *approved

	c.MOUDiscount = orZero(ParseAmount(cell("mou_discount")))
	c.CoPay = orZero(ParseAmount(cell("co_pay")))
	c.ConsumableDeduction = orZero(ParseAmount(cell("consumable_deduction")))
	c.HospitalDiscount = orZero(ParseAmount(cell("hospital_discount")))
	c.PaidByPatient = orZero(ParseAmount(cell("paid_by_patient")))
	c.TDS = orZero(ParseAmount(cell("tds")))
	c.AmountSettledInAC = orZero(ParseAmount(cell("amount_settled_in_ac")))
	// The exports carry the settled total in the account column.
	c.TotalSettledAmount = c.AmountSettledInAC

	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.Derive()
	return c, nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
