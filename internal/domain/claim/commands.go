package claim

import (
	"strings"
	"time"
)

// CreateClaimCommand carries candidate values for a new claim. Every field
// is a pointer: nil means the caller did not supply it. Data-entry UIs
// submit literal "", "null", and "undefined" strings for blank inputs;
// those are normalized to nil before the command is built (NormalizeText).
type CreateClaimCommand struct {
	DateOfAdmission *time.Time
	DateOfDischarge *time.Time
	QueryReplyDate  *time.Time
	SettlementDate  *time.Time

	TPAName         *string
	ParentInsurance *string
	ClaimID         *string
	UHIDIPNo        *string
	PatientName     *string
	UTRNumber       *string

	BillAmount                *float64
	ApprovedAmount            *float64
	MOUDiscount               *float64
	CoPay                     *float64
	ConsumableDeduction       *float64
	HospitalDiscount          *float64
	PaidByPatient             *float64
	HospitalDiscountAuthority *string
	OtherDeductions           *float64
	TDS                       *float64
	AmountSettledInAC         *float64
	TotalSettledAmount        *float64

	ReasonLessSettlement *string

	PhysicalFileDispatch *DispatchStatus
	ClaimSettledSoftware *bool
	ReceiptVerifiedBank  *bool
}

// UpdateClaimCommand is a partial update: nil means "leave unchanged",
// never "clear".
type UpdateClaimCommand struct {
	DateOfAdmission *time.Time
	DateOfDischarge *time.Time
	QueryReplyDate  *time.Time
	SettlementDate  *time.Time

	TPAName         *string
	ParentInsurance *string
	ClaimID         *string
	UHIDIPNo        *string
	PatientName     *string
	UTRNumber       *string

	BillAmount                *float64
	ApprovedAmount            *float64
	MOUDiscount               *float64
	CoPay                     *float64
	ConsumableDeduction       *float64
	HospitalDiscount          *float64
	PaidByPatient             *float64
	HospitalDiscountAuthority *string
	OtherDeductions           *float64
	TDS                       *float64
	AmountSettledInAC         *float64
	TotalSettledAmount        *float64

	ReasonLessSettlement *string

	PhysicalFileDispatch *DispatchStatus
	ClaimSettledSoftware *bool
	ReceiptVerifiedBank  *bool
}

// NormalizeText maps the blank-value sentinels data-entry frontends send
// ("", "null", "undefined") to absent. Everything else is trimmed.
func NormalizeText(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" || t == "null" || t == "undefined" {
		return nil
	}
	return &t
}

const (
	msgRequired                  = "this field is required"
	msgNonNegative               = "must not be negative"
	msgAdmissionAfterDischarge   = "date of admission cannot be after date of discharge"
	msgSettlementBeforeDischarge = "settlement date cannot be before discharge date"
)

func requireText(verr *ValidationError, field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		verr.add(field, msgRequired)
	}
}

// NewClaim validates a create command and builds a derived Claim.
// Returns *ValidationError on any field-level or cross-field failure.
func NewClaim(cmd *CreateClaimCommand) (*Claim, error) {
	verr := newValidationError()

	requireText(verr, "claim_id", cmd.ClaimID)
	requireText(verr, "patient_name", cmd.PatientName)
	requireText(verr, "uhid_ip_no", cmd.UHIDIPNo)
	requireText(verr, "tpa_name", cmd.TPAName)
	requireText(verr, "parent_insurance", cmd.ParentInsurance)

	if cmd.DateOfAdmission == nil {
		verr.add("date_of_admission", msgRequired)
	}
	if cmd.DateOfDischarge == nil {
		verr.add("date_of_discharge", msgRequired)
	}
	if cmd.BillAmount == nil {
		verr.add("bill_amount", msgRequired)
	}
	if cmd.ApprovedAmount == nil {
		verr.add("approved_amount", msgRequired)
	}

	checkAmounts(verr, amountFields(cmd.BillAmount, cmd.ApprovedAmount, cmd.MOUDiscount,
		cmd.CoPay, cmd.ConsumableDeduction, cmd.HospitalDiscount, cmd.PaidByPatient,
		cmd.OtherDeductions, cmd.TDS, cmd.AmountSettledInAC, cmd.TotalSettledAmount))

	checkDateOrder(verr, cmd.DateOfAdmission, cmd.DateOfDischarge, cmd.SettlementDate)

	if cmd.PhysicalFileDispatch != nil && !cmd.PhysicalFileDispatch.IsValid() {
		verr.add("physical_file_dispatch", ErrInvalidDispatch.Error())
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	c := &Claim{
		DateOfAdmission:      cmd.DateOfAdmission,
		DateOfDischarge:      cmd.DateOfDischarge,
		QueryReplyDate:       cmd.QueryReplyDate,
		SettlementDate:       cmd.SettlementDate,
		TPAName:              *cmd.TPAName,
		ParentInsurance:      *cmd.ParentInsurance,
		ClaimID:              *cmd.ClaimID,
		UHIDIPNo:             *cmd.UHIDIPNo,
		PatientName:          *cmd.PatientName,
		BillAmount:           *cmd.BillAmount,
		ApprovedAmount:       *cmd.ApprovedAmount,
		PhysicalFileDispatch: DispatchPending,
	}
	setIfPresent(&c.UTRNumber, cmd.UTRNumber)
	setIfPresent(&c.HospitalDiscountAuthority, cmd.HospitalDiscountAuthority)
	setIfPresent(&c.ReasonLessSettlement, cmd.ReasonLessSettlement)
	setIfPresent(&c.MOUDiscount, cmd.MOUDiscount)
	setIfPresent(&c.CoPay, cmd.CoPay)
	setIfPresent(&c.ConsumableDeduction, cmd.ConsumableDeduction)
	setIfPresent(&c.HospitalDiscount, cmd.HospitalDiscount)
	setIfPresent(&c.PaidByPatient, cmd.PaidByPatient)
	setIfPresent(&c.OtherDeductions, cmd.OtherDeductions)
	setIfPresent(&c.TDS, cmd.TDS)
	setIfPresent(&c.AmountSettledInAC, cmd.AmountSettledInAC)
	setIfPresent(&c.TotalSettledAmount, cmd.TotalSettledAmount)
	setIfPresent(&c.ClaimSettledSoftware, cmd.ClaimSettledSoftware)
	setIfPresent(&c.ReceiptVerifiedBank, cmd.ReceiptVerifiedBank)
	if cmd.PhysicalFileDispatch != nil {
		c.PhysicalFileDispatch = *cmd.PhysicalFileDispatch
	}

	c.Derive()
	return c, nil
}

// ApplyUpdate validates a partial update against the merged state of the
// claim and applies it. The derived fields are recomputed unconditionally,
// even when the update touches neither input field.
func (c *Claim) ApplyUpdate(cmd *UpdateClaimCommand) error {
	verr := newValidationError()

	checkAmounts(verr, amountFields(cmd.BillAmount, cmd.ApprovedAmount, cmd.MOUDiscount,
		cmd.CoPay, cmd.ConsumableDeduction, cmd.HospitalDiscount, cmd.PaidByPatient,
		cmd.OtherDeductions, cmd.TDS, cmd.AmountSettledInAC, cmd.TotalSettledAmount))

	admission := coalesceDate(cmd.DateOfAdmission, c.DateOfAdmission)
	discharge := coalesceDate(cmd.DateOfDischarge, c.DateOfDischarge)
	settlement := coalesceDate(cmd.SettlementDate, c.SettlementDate)
	checkDateOrder(verr, admission, discharge, settlement)

	if cmd.PhysicalFileDispatch != nil && !cmd.PhysicalFileDispatch.IsValid() {
		verr.add("physical_file_dispatch", ErrInvalidDispatch.Error())
	}

	if err := verr.orNil(); err != nil {
		return err
	}

	if cmd.DateOfAdmission != nil {
		c.DateOfAdmission = cmd.DateOfAdmission
	}
	if cmd.DateOfDischarge != nil {
		c.DateOfDischarge = cmd.DateOfDischarge
	}
	if cmd.QueryReplyDate != nil {
		c.QueryReplyDate = cmd.QueryReplyDate
	}
	if cmd.SettlementDate != nil {
		c.SettlementDate = cmd.SettlementDate
	}
	setIfPresent(&c.TPAName, cmd.TPAName)
	setIfPresent(&c.ParentInsurance, cmd.ParentInsurance)
	setIfPresent(&c.ClaimID, cmd.ClaimID)
	setIfPresent(&c.UHIDIPNo, cmd.UHIDIPNo)
	setIfPresent(&c.PatientName, cmd.PatientName)
	setIfPresent(&c.UTRNumber, cmd.UTRNumber)
	setIfPresent(&c.BillAmount, cmd.BillAmount)
	setIfPresent(&c.ApprovedAmount, cmd.ApprovedAmount)
	setIfPresent(&c.MOUDiscount, cmd.MOUDiscount)
	setIfPresent(&c.CoPay, cmd.CoPay)
	setIfPresent(&c.ConsumableDeduction, cmd.ConsumableDeduction)
	setIfPresent(&c.HospitalDiscount, cmd.HospitalDiscount)
	setIfPresent(&c.PaidByPatient, cmd.PaidByPatient)
	setIfPresent(&c.HospitalDiscountAuthority, cmd.HospitalDiscountAuthority)
	setIfPresent(&c.OtherDeductions, cmd.OtherDeductions)
	setIfPresent(&c.TDS, cmd.TDS)
	setIfPresent(&c.AmountSettledInAC, cmd.AmountSettledInAC)
	setIfPresent(&c.TotalSettledAmount, cmd.TotalSettledAmount)
	setIfPresent(&c.ReasonLessSettlement, cmd.ReasonLessSettlement)
	setIfPresent(&c.ClaimSettledSoftware, cmd.ClaimSettledSoftware)
	setIfPresent(&c.ReceiptVerifiedBank, cmd.ReceiptVerifiedBank)
	if cmd.PhysicalFileDispatch != nil {
		c.PhysicalFileDispatch = *cmd.PhysicalFileDispatch
	}

	c.Derive()
	return nil
}

// Validate applies the field-level checks to a fully built record. The
// import pipeline builds records outside the command path and funnels them
// through here so no write can skip validation.
func (c *Claim) Validate() error {
	verr := newValidationError()

	if strings.TrimSpace(c.ClaimID) == "" {
		verr.add("claim_id", msgRequired)
	}
	if strings.TrimSpace(c.PatientName) == "" {
		verr.add("patient_name", msgRequired)
	}
	if strings.TrimSpace(c.UHIDIPNo) == "" {
		verr.add("uhid_ip_no", msgRequired)
	}

	checkAmounts(verr, amountFields(&c.BillAmount, &c.ApprovedAmount, &c.MOUDiscount,
		&c.CoPay, &c.ConsumableDeduction, &c.HospitalDiscount, &c.PaidByPatient,
		&c.OtherDeductions, &c.TDS, &c.AmountSettledInAC, &c.TotalSettledAmount))

	checkDateOrder(verr, c.DateOfAdmission, c.DateOfDischarge, c.SettlementDate)

	if c.PhysicalFileDispatch != "" && !c.PhysicalFileDispatch.IsValid() {
		verr.add("physical_file_dispatch", ErrInvalidDispatch.Error())
	}

	return verr.orNil()
}

type amountField struct {
	name  string
	value *float64
}

func amountFields(bill, approved, mou, coPay, consumable, hospital, paidByPatient, other, tds, settledInAC, totalSettled *float64) []amountField {
	return []amountField{
		{"bill_amount", bill},
		{"approved_amount", approved},
		{"mou_discount", mou},
		{"co_pay", coPay},
		{"consumable_deduction", consumable},
		{"hospital_discount", hospital},
		{"paid_by_patient", paidByPatient},
		{"other_deductions", other},
		{"tds", tds},
		{"amount_settled_in_ac", settledInAC},
		{"total_settled_amount", totalSettled},
	}
}

func checkAmounts(verr *ValidationError, fields []amountField) {
	for _, f := range fields {
		if f.value != nil && *f.value < 0 {
			verr.add(f.name, msgNonNegative)
		}
	}
}

func checkDateOrder(verr *ValidationError, admission, discharge, settlement *time.Time) {
	if admission != nil && discharge != nil && admission.After(*discharge) {
		verr.add("date_of_admission", msgAdmissionAfterDischarge)
	}
	if settlement != nil && discharge != nil && settlement.Before(*discharge) {
		verr.add("settlement_date", msgSettlementBeforeDischarge)
	}
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func coalesceDate(candidate, existing *time.Time) *time.Time {
	if candidate != nil {
		return candidate
	}
	return existing
}
