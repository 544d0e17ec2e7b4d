package claim

import (
	"context"
	"time"
)

// Ordering fields accepted by ListClaimsQuery. Leaving OrderBy empty means
// creation time descending; anything else unrecognized is rejected.
const (
	OrderByDischargeDate  = "date_of_discharge"
	OrderBySettlementDate = "settlement_date"
	OrderByBillAmount     = "bill_amount"
	OrderByApprovedAmount = "approved_amount"
	OrderByCreatedAt      = "created_at"
)

func ValidOrderBy(field string) bool {
	switch field {
	case "", OrderByDischargeDate, OrderBySettlementDate, OrderByBillAmount, OrderByApprovedAmount, OrderByCreatedAt:
		return true
	}
	return false
}

// ListClaimsQuery combines equality/range filters, free-text search, and
// ordering. Nil pointers mean "not filtered".
type ListClaimsQuery struct {
	TPAName                 *string
	TPANameContains         *string
	ParentInsurance         *string
	ParentInsuranceContains *string
	ClaimID                 *string
	ClaimIDContains         *string
	PatientNameContains     *string
	Month                   *string
	PhysicalFileDispatch    *DispatchStatus
	ClaimSettledSoftware    *bool
	ReceiptVerifiedBank     *bool

	DischargeFrom  *time.Time
	DischargeTo    *time.Time
	SettlementFrom *time.Time
	SettlementTo   *time.Time

	BillAmountMin     *float64
	BillAmountMax     *float64
	ApprovedAmountMin *float64
	ApprovedAmountMax *float64

	HasSettlementDate *bool

	// Search matches claim_id, patient_name, and uhid_ip_no
	// case-insensitively.
	Search string

	OrderBy   string
	OrderDesc bool

	Page     int
	PageSize int
}

type PagedClaims struct {
	Claims     []*Claim `json:"claims"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

type Repository interface {
	// Create persists a new claim. Returns ErrDuplicateClaimID when the
	// external claim ID is already taken.
	Create(ctx context.Context, c *Claim) error

	// GetByID returns ErrClaimNotFound if the numeric id is absent.
	GetByID(ctx context.Context, id uint) (*Claim, error)

	// Save writes back a mutated claim. The derived fields are recomputed
	// on the way down regardless of what changed.
	Save(ctx context.Context, c *Claim) error

	// Delete removes the row. Blob cleanup is the caller's concern.
	Delete(ctx context.Context, id uint) error

	// List returns a filtered, searched, ordered, paginated page.
	List(ctx context.Context, q *ListClaimsQuery) (*PagedClaims, error)

	// All returns every claim; the aggregation engine recomputes its
	// reports over a full scan on each call.
	All(ctx context.Context) ([]*Claim, error)

	Count(ctx context.Context) (int64, error)

	// DeleteAll clears the table and reports how many rows went. Used by
	// the import pipeline's replace-all mode.
	DeleteAll(ctx context.Context) (int64, error)
}
