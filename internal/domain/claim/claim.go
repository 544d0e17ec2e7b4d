package claim

import (
	"time"

	"gorm.io/gorm"
)

// DispatchStatus tracks where the physical claim file currently is.
type DispatchStatus string

const (
	DispatchPending     DispatchStatus = "pending"
	DispatchDispatched  DispatchStatus = "dispatched"
	DispatchReceived    DispatchStatus = "received"
	DispatchNotRequired DispatchStatus = "not_required"
)

func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchPending, DispatchDispatched, DispatchReceived, DispatchNotRequired:
		return true
	}
	return false
}

// FileField identifies one of the four document slots on a claim.
type FileField string

const (
	FileApprovalLetter FileField = "approval_letter"
	FilePhysicalFile   FileField = "physical_file_upload"
	FileQueryOnClaim   FileField = "query_on_claim"
	FileQueryReply     FileField = "query_reply_upload"
)

// AllFileFields lists the slots in their canonical order.
var AllFileFields = []FileField{FileApprovalLetter, FilePhysicalFile, FileQueryOnClaim, FileQueryReply}

func ParseFileField(s string) (FileField, error) {
	f := FileField(s)
	for _, known := range AllFileFields {
		if f == known {
			return f, nil
		}
	}
	return "", ErrInvalidFileField
}

// FileRef points at a stored blob. The upload-status flag on the claim is
// tracked independently of the reference; a slot can be flagged uploaded
// with no current file (uploaded then later removed).
type FileRef struct {
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Claim is one hospital insurance claim, tracked from admission to settlement.
type Claim struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Derived on every save from DateOfDischarge; never client-settable.
	Month string `gorm:"column:month;type:varchar(7);index" json:"month"`

	DateOfAdmission *time.Time `gorm:"column:date_of_admission;type:date" json:"date_of_admission"`
	DateOfDischarge *time.Time `gorm:"column:date_of_discharge;type:date;index" json:"date_of_discharge"`
	QueryReplyDate  *time.Time `gorm:"column:query_reply_date;type:date" json:"query_reply_date"`
	SettlementDate  *time.Time `gorm:"column:settlement_date;type:date;index" json:"settlement_date"`

	TPAName         string `gorm:"column:tpa_name;type:varchar(200);index" json:"tpa_name"`
	ParentInsurance string `gorm:"column:parent_insurance;type:varchar(200)" json:"parent_insurance"`
	ClaimID         string `gorm:"column:claim_id;type:varchar(100);uniqueIndex;not null" json:"claim_id"`
	UHIDIPNo        string `gorm:"column:uhid_ip_no;type:varchar(100)" json:"uhid_ip_no"`
	PatientName     string `gorm:"column:patient_name;type:varchar(200);index" json:"patient_name"`
	UTRNumber       string `gorm:"column:utr_number;type:varchar(100)" json:"utr_number"`

	BillAmount                float64 `gorm:"column:bill_amount;type:numeric(12,2);not null" json:"bill_amount"`
	ApprovedAmount            float64 `gorm:"column:approved_amount;type:numeric(12,2);not null" json:"approved_amount"`
	MOUDiscount               float64 `gorm:"column:mou_discount;type:numeric(12,2);default:0" json:"mou_discount"`
	CoPay                     float64 `gorm:"column:co_pay;type:numeric(12,2);default:0" json:"co_pay"`
	ConsumableDeduction       float64 `gorm:"column:consumable_deduction;type:numeric(12,2);default:0" json:"consumable_deduction"`
	HospitalDiscount          float64 `gorm:"column:hospital_discount;type:numeric(12,2);default:0" json:"hospital_discount"`
	PaidByPatient             float64 `gorm:"column:paid_by_patient;type:numeric(12,2);default:0" json:"paid_by_patient"`
	HospitalDiscountAuthority string  `gorm:"column:hospital_discount_authority;type:varchar(200)" json:"hospital_discount_authority"`
	OtherDeductions           float64 `gorm:"column:other_deductions;type:numeric(12,2);default:0" json:"other_deductions"`
	TDS                       float64 `gorm:"column:tds;type:numeric(12,2);default:0" json:"tds"`
	AmountSettledInAC         float64 `gorm:"column:amount_settled_in_ac;type:numeric(15,2);default:0" json:"amount_settled_in_ac"`
	TotalSettledAmount        float64 `gorm:"column:total_settled_amount;type:numeric(15,2);default:0" json:"total_settled_amount"`

	// Derived: approved minus settled. The only monetary field allowed to
	// go negative (over-settlement).
	DifferenceAmount float64 `gorm:"column:difference_amount;type:numeric(15,2);default:0" json:"difference_amount"`

	ReasonLessSettlement string `gorm:"column:reason_less_settlement;type:text" json:"reason_less_settlement"`

	ApprovalLetter         *FileRef `gorm:"column:approval_letter;serializer:json" json:"approval_letter"`
	ApprovalLetterUploaded bool     `gorm:"column:approval_letter_uploaded;default:false" json:"approval_letter_uploaded"`
	PhysicalFile           *FileRef `gorm:"column:physical_file_upload;serializer:json" json:"physical_file_upload"`
	PhysicalFileUploaded   bool     `gorm:"column:physical_file_uploaded;default:false" json:"physical_file_uploaded"`
	QueryOnClaim           *FileRef `gorm:"column:query_on_claim;serializer:json" json:"query_on_claim"`
	QueryOnClaimUploaded   bool     `gorm:"column:query_on_claim_uploaded;default:false" json:"query_on_claim_uploaded"`
	QueryReply             *FileRef `gorm:"column:query_reply_upload;serializer:json" json:"query_reply_upload"`
	QueryReplyUploaded     bool     `gorm:"column:query_reply_uploaded;default:false" json:"query_reply_uploaded"`

	PhysicalFileDispatch DispatchStatus `gorm:"column:physical_file_dispatch;type:varchar(20);default:'pending';index" json:"physical_file_dispatch"`

	ClaimSettledSoftware bool `gorm:"column:claim_settled_software;default:false" json:"claim_settled_software"`
	ReceiptVerifiedBank  bool `gorm:"column:receipt_verified_bank;default:false" json:"receipt_verified_bank"`
}

func (Claim) TableName() string {
	return "claims.claims"
}

// Derive recomputes the month and difference-amount fields from their
// inputs. It must run on every write, including ones that touch neither
// input field, so the derived columns can never go stale.
func (c *Claim) Derive() {
	if c.DateOfDischarge != nil {
		c.Month = c.DateOfDischarge.Format("2006-01")
	} else {
		c.Month = ""
	}
	c.DifferenceAmount = c.ApprovedAmount - c.TotalSettledAmount
}

// BeforeSave keeps the derived columns consistent even for writes that
// bypass the service layer.
func (c *Claim) BeforeSave(tx *gorm.DB) error {
	c.Derive()
	return nil
}

// FileRefFor returns the stored-file reference for a slot, nil if absent.
func (c *Claim) FileRefFor(f FileField) *FileRef {
	switch f {
	case FileApprovalLetter:
		return c.ApprovalLetter
	case FilePhysicalFile:
		return c.PhysicalFile
	case FileQueryOnClaim:
		return c.QueryOnClaim
	case FileQueryReply:
		return c.QueryReply
	}
	return nil
}

func (c *Claim) SetFileRef(f FileField, ref *FileRef) {
	switch f {
	case FileApprovalLetter:
		c.ApprovalLetter = ref
	case FilePhysicalFile:
		c.PhysicalFile = ref
	case FileQueryOnClaim:
		c.QueryOnClaim = ref
	case FileQueryReply:
		c.QueryReply = ref
	}
}

func (c *Claim) FileUploaded(f FileField) bool {
	switch f {
	case FileApprovalLetter:
		return c.ApprovalLetterUploaded
	case FilePhysicalFile:
		return c.PhysicalFileUploaded
	case FileQueryOnClaim:
		return c.QueryOnClaimUploaded
	case FileQueryReply:
		return c.QueryReplyUploaded
	}
	return false
}

func (c *Claim) SetFileUploaded(f FileField, uploaded bool) {
	switch f {
	case FileApprovalLetter:
		c.ApprovalLetterUploaded = uploaded
	case FilePhysicalFile:
		c.PhysicalFileUploaded = uploaded
	case FileQueryOnClaim:
		c.QueryOnClaimUploaded = uploaded
	case FileQueryReply:
		c.QueryReplyUploaded = uploaded
	}
}

// IsSettled reports whether a settlement date has been recorded.
func (c *Claim) IsSettled() bool {
	return c.SettlementDate != nil
}
