package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

var _ claim.Repository = (*ClaimRepository)(nil)

func (r *ClaimRepository) Create(ctx context.Context, c *claim.Claim) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return claim.ErrDuplicateClaimID
		}
		return fmt.Errorf("inserting claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uint) (*claim.Claim, error) {
	var c claim.Claim
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, claim.ErrClaimNotFound
		}
		return nil, fmt.Errorf("fetching claim %d: %w", id, err)
	}
	return &c, nil
}

func (r *ClaimRepository) Save(ctx context.Context, c *claim.Claim) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return claim.ErrDuplicateClaimID
		}
		return fmt.Errorf("saving claim %d: %w", c.ID, err)
	}
	return nil
}

func (r *ClaimRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&claim.Claim{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting claim %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return claim.ErrClaimNotFound
	}
	return nil
}

func (r *ClaimRepository) List(ctx context.Context, q *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	db := applyFilters(r.db.WithContext(ctx).Model(&claim.Claim{}), q)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting claims: %w", err)
	}

	db = db.Order(orderClause(q))
	if q.PageSize > 0 {
		db = db.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}

	var claims []*claim.Claim
	if err := db.Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}

	totalPages := 0
	if q.PageSize > 0 {
		totalPages = int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	}

	return &claim.PagedClaims{
		Claims:     claims,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *ClaimRepository) All(ctx context.Context) ([]*claim.Claim, error) {
	var claims []*claim.Claim
	if err := r.db.WithContext(ctx).Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("scanning claims: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&claim.Claim{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting claims: %w", err)
	}
	return n, nil
}

func (r *ClaimRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&claim.Claim{})
	if res.Error != nil {
		return 0, fmt.Errorf("clearing claims: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func applyFilters(db *gorm.DB, q *claim.ListClaimsQuery) *gorm.DB {
	if q.TPAName != nil {
		db = db.Where("tpa_name = ?", *q.TPAName)
	}
	if q.TPANameContains != nil {
		db = db.Where("tpa_name ILIKE ?", contains(*q.TPANameContains))
	}
	if q.ParentInsurance != nil {
		db = db.Where("parent_insurance = ?", *q.ParentInsurance)
	}
	if q.ParentInsuranceContains != nil {
		db = db.Where("parent_insurance ILIKE ?", contains(*q.ParentInsuranceContains))
	}
	if q.ClaimID != nil {
		db = db.Where("claim_id = ?", *q.ClaimID)
	}
	if q.ClaimIDContains != nil {
		db = db.Where("claim_id ILIKE ?", contains(*q.ClaimIDContains))
	}
	if q.PatientNameContains != nil {
		db = db.Where("patient_name ILIKE ?", contains(*q.PatientNameContains))
	}
	if q.Month != nil {
		db = db.Where("month = ?", *q.Month)
	}
	if q.PhysicalFileDispatch != nil {
		db = db.Where("physical_file_dispatch = ?", *q.PhysicalFileDispatch)
	}
	if q.ClaimSettledSoftware != nil {
		db = db.Where("claim_settled_software = ?", *q.ClaimSettledSoftware)
	}
	if q.ReceiptVerifiedBank != nil {
		db = db.Where("receipt_verified_bank = ?", *q.ReceiptVerifiedBank)
	}
	if q.DischargeFrom != nil {
		db = db.Where("date_of_discharge >= ?", *q.DischargeFrom)
	}
	if q.DischargeTo != nil {
		db = db.Where("date_of_discharge <= ?", *q.DischargeTo)
	}
	if q.SettlementFrom != nil {
		db = db.Where("settlement_date >= ?", *q.SettlementFrom)
	}
	if q.SettlementTo != nil {
		db = db.Where("settlement_date <= ?", *q.SettlementTo)
	}
	if q.BillAmountMin != nil {
		db = db.Where("bill_amount >= ?", *q.BillAmountMin)
	}
	if q.BillAmountMax != nil {
		db = db.Where("bill_amount <= ?", *q.BillAmountMax)
	}
	if q.ApprovedAmountMin != nil {
		db = db.Where("approved_amount >= ?", *q.ApprovedAmountMin)
	}
	if q.ApprovedAmountMax != nil {
		db = db.Where("approved_amount <= ?", *q.ApprovedAmountMax)
	}
	if q.HasSettlementDate != nil {
		if *q.HasSettlementDate {
			db = db.Where("settlement_date IS NOT NULL")
		} else {
			db = db.Where("settlement_date IS NULL")
		}
	}
	if q.Search != "" {
		pattern := contains(q.Search)
		db = db.Where("claim_id ILIKE ? OR patient_name ILIKE ? OR uhid_ip_no ILIKE ?", pattern, pattern, pattern)
	}
	return db
}

func orderClause(q *claim.ListClaimsQuery) string {
	col := "created_at"
	desc := true
	switch q.OrderBy {
	case claim.OrderByDischargeDate, claim.OrderBySettlementDate, claim.OrderByBillAmount, claim.OrderByApprovedAmount:
		col = q.OrderBy
		desc = q.OrderDesc
	case claim.OrderByCreatedAt:
		desc = q.OrderDesc
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func contains(s string) string {
	return "%" + s + "%"
}
