package v1

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Accepted date layouts for form fields. ISO first for API clients, then the
// day-first layouts the data-entry frontend has always submitted.
var formDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
}

type ClaimHandler struct {
	claimSvc *service.ClaimService
	uploads  config.UploadConfig
	log      *zap.Logger
}

func NewClaimHandler(claimSvc *service.ClaimService, uploads config.UploadConfig, log *zap.Logger) *ClaimHandler {
	return &ClaimHandler{claimSvc: claimSvc, uploads: uploads, log: log}
}

func (h *ClaimHandler) List(c *gin.Context) {
	q, ok := h.buildListQuery(c)
	if !ok {
		return
	}

	page, err := h.claimSvc.ListClaims(c.Request.Context(), identityFrom(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}

func (h *ClaimHandler) Get(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	cl, err := h.claimSvc.GetClaim(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, cl)
}

func (h *ClaimHandler) Create(c *gin.Context) {
	form, ok := h.parseMultipart(c)
	if !ok {
		return
	}
	defer form.close()

	cmd := &claim.CreateClaimCommand{}
	if !form.fillCommand(c, claimCommandFields(cmd)) {
		return
	}

	cl, err := h.claimSvc.CreateClaim(c.Request.Context(), identityFrom(c), cmd, form.uploads, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, cl)
}

func (h *ClaimHandler) Update(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	form, ok := h.parseMultipart(c)
	if !ok {
		return
	}
	defer form.close()

	cmd := &claim.UpdateClaimCommand{}
	if !form.fillCommand(c, claimUpdateFields(cmd)) {
		return
	}

	cl, err := h.claimSvc.UpdateClaim(c.Request.Context(), identityFrom(c), id, cmd, form.uploads, form.deletions, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, cl)
}

func (h *ClaimHandler) Delete(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	if err := h.claimSvc.DeleteClaim(c.Request.Context(), identityFrom(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

func (h *ClaimHandler) DeleteFile(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	field, err := claim.ParseFileField(c.Param("field"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cl, err := h.claimSvc.DeleteClaimFile(c.Request.Context(), identityFrom(c), id, field, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, cl)
}

type fileStatusRequest struct {
	Uploaded *bool `json:"uploaded" binding:"required"`
}

func (h *ClaimHandler) SetFileStatus(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	field, err := claim.ParseFileField(c.Param("field"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req fileStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	cl, err := h.claimSvc.SetFileStatus(c.Request.Context(), identityFrom(c), id, field, *req.Uploaded, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, cl)
}

func (h *ClaimHandler) buildListQuery(c *gin.Context) (*claim.ListClaimsQuery, bool) {
	q := &claim.ListClaimsQuery{
		TPAName:                 queryText(c, "tpa_name"),
		TPANameContains:         queryText(c, "tpa_name_contains"),
		ParentInsurance:         queryText(c, "parent_insurance"),
		ParentInsuranceContains: queryText(c, "parent_insurance_contains"),
		ClaimID:                 queryText(c, "claim_id"),
		ClaimIDContains:         queryText(c, "claim_id_contains"),
		PatientNameContains:     queryText(c, "patient_name_contains"),
		Month:                   queryText(c, "month"),
		Search:                  c.Query("search"),
		OrderBy:                 c.Query("order_by"),
		OrderDesc:               c.Query("order") == "desc",
		Page:                    parseQueryInt(c, "page", 1),
		PageSize:                parseQueryInt(c, "page_size", defaultPageSize),
	}

	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	if raw := c.Query("physical_file_dispatch"); raw != "" {
		d := claim.DispatchStatus(raw)
		if !d.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid physical_file_dispatch")
			return nil, false
		}
		q.PhysicalFileDispatch = &d
	}

	var ok bool
	if q.ClaimSettledSoftware, ok = queryBool(c, "claim_settled_software"); !ok {
		return nil, false
	}
	if q.ReceiptVerifiedBank, ok = queryBool(c, "receipt_verified_bank"); !ok {
		return nil, false
	}
	if q.HasSettlementDate, ok = queryBool(c, "has_settlement_date"); !ok {
		return nil, false
	}

	if q.DischargeFrom, ok = queryDate(c, "discharge_from"); !ok {
		return nil, false
	}
	if q.DischargeTo, ok = queryDate(c, "discharge_to"); !ok {
		return nil, false
	}
	if q.SettlementFrom, ok = queryDate(c, "settlement_from"); !ok {
		return nil, false
	}
	if q.SettlementTo, ok = queryDate(c, "settlement_to"); !ok {
		return nil, false
	}

	if q.BillAmountMin, ok = queryFloat(c, "bill_amount_min"); !ok {
		return nil, false
	}
	if q.BillAmountMax, ok = queryFloat(c, "bill_amount_max"); !ok {
		return nil, false
	}
	if q.ApprovedAmountMin, ok = queryFloat(c, "approved_amount_min"); !ok {
		return nil, false
	}
	if q.ApprovedAmountMax, ok = queryFloat(c, "approved_amount_max"); !ok {
		return nil, false
	}

	return q, true
}

func queryText(c *gin.Context, key string) *string {
	return claim.NormalizeText(c.Query(key))
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be true or false")
		return nil, false
	}
	return &b, true
}

func queryFloat(c *gin.Context, key string) (*float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be a number")
		return nil, false
	}
	return &f, true
}

func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, ok := parseFormDate(raw)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid "+key+": unrecognized date")
		return nil, false
	}
	return t, true
}

func parseFormDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// claimForm holds the parsed multipart request: field values with explicit
// presence, file uploads per slot, and slot deletion instructions.
type claimForm struct {
	values    map[string]string
	uploads   []service.FileUpload
	deletions []claim.FileField
	closers   []multipart.File
}

func (f *claimForm) close() {
	for _, c := range f.closers {
		_ = c.Close()
	}
}

// get reports presence separately from value so partial updates can tell
// "leave unchanged" apart from "set to blank".
func (f *claimForm) get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (h *ClaimHandler) parseMultipart(c *gin.Context) (*claimForm, bool) {
	if err := c.Request.ParseMultipartForm(h.uploads.MaxSizeBytes); err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, false
	}

	form := &claimForm{values: make(map[string]string)}
	for key, vals := range c.Request.MultipartForm.Value {
		if len(vals) > 0 {
			form.values[key] = vals[0]
		}
	}

	for _, field := range claim.AllFileFields {
		if form.values[string(field)+"_delete"] == "true" {
			form.deletions = append(form.deletions, field)
			continue
		}

		file, header, err := c.Request.FormFile(string(field))
		if err != nil {
			continue // slot not in this request
		}
		if header.Size > h.uploads.MaxSizeBytes {
			form.close()
			_ = file.Close()
			respondError(c, http.StatusRequestEntityTooLarge, string(field)+" exceeds the upload size limit")
			return nil, false
		}
		form.closers = append(form.closers, file)
		form.uploads = append(form.uploads, service.FileUpload{
			Field:       field,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		})
	}

	return form, true
}

// commandFields binds form keys to command pointers so create and update
// share one fill loop.
type commandFields struct {
	dates    map[string]**time.Time
	texts    map[string]**string
	amounts  map[string]**float64
	bools    map[string]**bool
	dispatch **claim.DispatchStatus
}

func claimCommandFields(cmd *claim.CreateClaimCommand) commandFields {
	return commandFields{
		dates: map[string]**time.Time{
			"date_of_admission": &cmd.DateOfAdmission,
			"date_of_discharge": &cmd.DateOfDischarge,
			"query_reply_date":  &cmd.QueryReplyDate,
			"settlement_date":   &cmd.SettlementDate,
		},
		texts: map[string]**string{
			"tpa_name":                    &cmd.TPAName,
			"parent_insurance":            &cmd.ParentInsurance,
			"claim_id":                    &cmd.ClaimID,
			"uhid_ip_no":                  &cmd.UHIDIPNo,
			"patient_name":                &cmd.PatientName,
			"utr_number":                  &cmd.UTRNumber,
			"hospital_discount_authority": &cmd.HospitalDiscountAuthority,
			"reason_less_settlement":      &cmd.ReasonLessSettlement,
		},
		amounts: map[string]**float64{
			"bill_amount":          &cmd.BillAmount,
			"approved_amount":      &cmd.ApprovedAmount,
			"mou_discount":         &cmd.MOUDiscount,
			"co_pay":               &cmd.CoPay,
			"consumable_deduction": &cmd.ConsumableDeduction,
			"hospital_discount":    &cmd.HospitalDiscount,
			"paid_by_patient":      &cmd.PaidByPatient,
			"other_deductions":     &cmd.OtherDeductions,
			"tds":                  &cmd.TDS,
			"amount_settled_in_ac": &cmd.AmountSettledInAC,
			"total_settled_amount": &cmd.TotalSettledAmount,
		},
		bools: map[string]**bool{
			"claim_settled_software": &cmd.ClaimSettledSoftware,
			"receipt_verified_bank":  &cmd.ReceiptVerifiedBank,
		},
		dispatch: &cmd.PhysicalFileDispatch,
	}
}

func claimUpdateFields(cmd *claim.UpdateClaimCommand) commandFields {
	return commandFields{
		dates: map[string]**time.Time{
			"date_of_admission": &cmd.DateOfAdmission,
			"date_of_discharge": &cmd.DateOfDischarge,
			"query_reply_date":  &cmd.QueryReplyDate,
			"settlement_date":   &cmd.SettlementDate,
		},
		texts: map[string]**string{
			"tpa_name":                    &cmd.TPAName,
			"parent_insurance":            &cmd.ParentInsurance,
			"claim_id":                    &cmd.ClaimID,
			"uhid_ip_no":                  &cmd.UHIDIPNo,
			"patient_name":                &cmd.PatientName,
			"utr_number":                  &cmd.UTRNumber,
			"hospital_discount_authority": &cmd.HospitalDiscountAuthority,
			"reason_less_settlement":      &cmd.ReasonLessSettlement,
		},
		amounts: map[string]**float64{
			"bill_amount":          &cmd.BillAmount,
			"approved_amount":      &cmd.ApprovedAmount,
			"mou_discount":         &cmd.MOUDiscount,
			"co_pay":               &cmd.CoPay,
			"consumable_deduction": &cmd.ConsumableDeduction,
			"hospital_discount":    &cmd.HospitalDiscount,
			"paid_by_patient":      &cmd.PaidByPatient,
			"other_deductions":     &cmd.OtherDeductions,
			"tds":                  &cmd.TDS,
			"amount_settled_in_ac": &cmd.AmountSettledInAC,
			"total_settled_amount": &cmd.TotalSettledAmount,
		},
		bools: map[string]**bool{
			"claim_settled_software": &cmd.ClaimSettledSoftware,
			"receipt_verified_bank":  &cmd.ReceiptVerifiedBank,
		},
		dispatch: &cmd.PhysicalFileDispatch,
	}
}

// fillCommand parses present form fields into the command. Blank-value
// sentinels ("", "null", "undefined") count as absent, matching what the
// data-entry frontend submits for untouched inputs. Responds 400 itself on
// the first unparseable value.
func (f *claimForm) fillCommand(c *gin.Context, fields commandFields) bool {
	bad := make(map[string]string)

	for key, dst := range fields.texts {
		if raw, ok := f.get(key); ok {
			*dst = claim.NormalizeText(raw)
		}
	}

	for key, dst := range fields.dates {
		raw, ok := f.get(key)
		if !ok {
			continue
		}
		v := claim.NormalizeText(raw)
		if v == nil {
			continue
		}
		t, ok := parseFormDate(*v)
		if !ok {
			bad[key] = "unrecognized date"
			continue
		}
		*dst = t
	}

	for key, dst := range fields.amounts {
		raw, ok := f.get(key)
		if !ok {
			continue
		}
		v := claim.NormalizeText(raw)
		if v == nil {
			continue
		}
		amt, err := strconv.ParseFloat(strings.ReplaceAll(*v, ",", ""), 64)
		if err != nil {
			bad[key] = "must be a number"
			continue
		}
		*dst = &amt
	}

	for key, dst := range fields.bools {
		raw, ok := f.get(key)
		if !ok {
			continue
		}
		v := claim.NormalizeText(raw)
		if v == nil {
			continue
		}
		b, err := strconv.ParseBool(*v)
		if err != nil {
			bad[key] = "must be true or false"
			continue
		}
		*dst = &b
	}

	if raw, ok := f.get("physical_file_dispatch"); ok {
		if v := claim.NormalizeText(raw); v != nil {
			d := claim.DispatchStatus(*v)
			if !d.IsValid() {
				bad["physical_file_dispatch"] = claim.ErrInvalidDispatch.Error()
			} else {
				*fields.dispatch = &d
			}
		}
	}

	if len(bad) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: bad})
		return false
	}

	return true
}
