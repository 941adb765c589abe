package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/http/middleware"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
)

// SlipGenerator renders the RIS slip from a finalized snapshot.
type SlipGenerator interface {
	Generate(slip model.RequisitionSlip) ([]byte, error)
}

// StatementGenerator renders a contract's ledger statement.
type StatementGenerator interface {
	Generate(contract model.Contract, rows []model.ContractTransaction) ([]byte, error)
}

type Handler struct {
	requisitions *service.RequisitionService
	ledger       *service.LedgerService
	allocator    *service.AllocatorService
	trips        *service.TripService
	slips        SlipGenerator
	statements   StatementGenerator
	log          zerolog.Logger
}

func NewHandler(
	requisitions *service.RequisitionService,
	ledger *service.LedgerService,
	allocator *service.AllocatorService,
	trips *service.TripService,
	slips SlipGenerator,
	statements StatementGenerator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		requisitions: requisitions,
		ledger:       ledger,
		allocator:    allocator,
		trips:        trips,
		slips:        slips,
		statements:   statements,
		log:          log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/requisitions", h.submitRequisition)
	protected.GET("/requisitions/:id", h.getRequisition)
	protected.GET("/requisitions/:id/slip", h.requisitionSlip)
	protected.POST("/requisitions/:id/validate", h.validateRequisition)
	protected.POST("/requisitions/:id/return", h.returnRequisition)
	protected.POST("/requisitions/:id/reject", h.rejectRequisition)
	protected.POST("/requisitions/:id/resubmit", h.resubmitRequisition)
	protected.POST("/requisitions/:id/issue", h.issueRequisition)
	protected.POST("/requisitions/:id/awaiting-receipt", h.markAwaitingReceipt)
	protected.POST("/requisitions/:id/receipt", h.submitReceipt)
	protected.POST("/requisitions/:id/receipt/return", h.returnReceipt)
	protected.POST("/requisitions/:id/verify", h.verifyRequisition)
	protected.POST("/requisitions/:id/cancel", h.cancelRequisition)
	protected.POST("/requisitions/:id/void", h.voidRequisition)

	protected.POST("/contracts", h.openContract)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/statement", h.contractStatement)
	protected.GET("/contracts/:id/statement.xlsx", h.contractStatementExport)
	protected.POST("/contracts/:id/deduct", h.deductContract)
	protected.POST("/contracts/:id/adjust", h.adjustContract)

	protected.POST("/serials/reservations", h.reserveSerial)
	protected.GET("/serials/reservations", h.listReservations)

	protected.POST("/trip-tickets", h.submitTrip)
	protected.GET("/trip-tickets/:id", h.getTrip)
	protected.POST("/trip-tickets/:id/approve", h.approveTrip)
	protected.POST("/trip-tickets/:id/return", h.returnTrip)
	protected.POST("/trip-tickets/:id/reject", h.rejectTrip)
	protected.POST("/trip-tickets/:id/resubmit", h.resubmitTrip)
	protected.POST("/trip-tickets/:id/cancel", h.cancelTrip)
}

type submitRequisitionRequest struct {
	VehicleID       string          `json:"vehicle_id" binding:"required"`
	DriverID        string          `json:"driver_id" binding:"required"`
	Purpose         string          `json:"purpose"`
	Destination     string          `json:"destination"`
	RequestedLiters decimal.Decimal `json:"requested_liters" binding:"required"`
}

func (h *Handler) submitRequisition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req submitRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
		return
	}
	driverID, err := uuid.Parse(strings.TrimSpace(req.DriverID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver_id"})
		return
	}

	result, err := h.requisitions.Submit(c.Request.Context(), principal, service.SubmitRequisitionInput{
		VehicleID:       vehicleID,
		DriverID:        driverID,
		Purpose:         req.Purpose,
		Destination:     req.Destination,
		RequestedLiters: req.RequestedLiters,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	result, err := h.requisitions.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) requisitionSlip(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	slip, err := h.requisitions.Slip(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.slips.Generate(*slip)
	if err != nil {
		h.handleError(c, err)
		return
	}
	fileName := strings.ReplaceAll(*slip.Requisition.RISNumber, "/", "-") + ".pdf"
	c.Header("Content-Disposition", "attachment; filename=\"ris-"+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

type validateRequisitionRequest struct {
	Version         int64           `json:"version"`
	ContractID      string          `json:"contract_id" binding:"required"`
	ValidatedLiters decimal.Decimal `json:"validated_liters" binding:"required"`
	ValidUntil      *time.Time      `json:"valid_until"`
	Remarks         *string         `json:"remarks"`
}

func (h *Handler) validateRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req validateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contractID, err := uuid.Parse(strings.TrimSpace(req.ContractID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
		return
	}
	result, err := h.requisitions.Validate(c.Request.Context(), principal, id, req.Version, service.ValidateRequisitionInput{
		ContractID:      contractID,
		ValidatedLiters: req.ValidatedLiters,
		ValidUntil:      req.ValidUntil,
		Remarks:         req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type remarksRequest struct {
	Version int64  `json:"version"`
	Remarks string `json:"remarks"`
}

func (h *Handler) returnRequisition(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.requisitions.ReturnToRequester(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

func (h *Handler) rejectRequisition(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.requisitions.Reject(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

func (h *Handler) returnReceipt(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.requisitions.ReturnReceipt(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

func (h *Handler) voidRequisition(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.requisitions.Void(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

type resubmitRequisitionRequest struct {
	Version         int64           `json:"version"`
	VehicleID       string          `json:"vehicle_id"`
	DriverID        string          `json:"driver_id"`
	Purpose         string          `json:"purpose"`
	Destination     string          `json:"destination"`
	RequestedLiters decimal.Decimal `json:"requested_liters" binding:"required"`
}

func (h *Handler) resubmitRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req resubmitRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.SubmitRequisitionInput{
		Purpose:         req.Purpose,
		Destination:     req.Destination,
		RequestedLiters: req.RequestedLiters,
	}
	if req.VehicleID != "" {
		vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
			return
		}
		in.VehicleID = vehicleID
	}
	if req.DriverID != "" {
		driverID, err := uuid.Parse(strings.TrimSpace(req.DriverID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver_id"})
			return
		}
		in.DriverID = driverID
	}
	result, err := h.requisitions.Resubmit(c.Request.Context(), principal, id, req.Version, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type issueRequisitionRequest struct {
	Version         int64           `json:"version"`
	RISNumber       string          `json:"ris_number"`
	PriceAtIssuance decimal.Decimal `json:"price_at_issuance" binding:"required"`
}

func (h *Handler) issueRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req issueRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.requisitions.Issue(c.Request.Context(), principal, id, req.Version, service.IssueRequisitionInput{
		RISNumber:       strings.TrimSpace(req.RISNumber),
		PriceAtIssuance: req.PriceAtIssuance,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type versionRequest struct {
	Version int64 `json:"version"`
}

func (h *Handler) markAwaitingReceipt(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.requisitions.MarkAwaitingReceipt(c.Request.Context(), principal, id, req.Version)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitReceiptRequest struct {
	Version       int64           `json:"version"`
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	InvoiceDate   time.Time       `json:"invoice_date" binding:"required"`
	ActualLiters  decimal.Decimal `json:"actual_liters" binding:"required"`
}

func (h *Handler) submitReceipt(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req submitReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.requisitions.SubmitReceipt(c.Request.Context(), principal, id, req.Version, service.SubmitReceiptInput{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		ActualLiters:  req.ActualLiters,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type verifyRequisitionRequest struct {
	Version         int64           `json:"version"`
	ActualLiters    decimal.Decimal `json:"actual_liters" binding:"required"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" binding:"required"`
	Remarks         *string         `json:"remarks"`
}

func (h *Handler) verifyRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req verifyRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.requisitions.Verify(c.Request.Context(), principal, id, req.Version, service.VerifyRequisitionInput{
		ActualLiters:    req.ActualLiters,
		PriceAtPurchase: req.PriceAtPurchase,
		Remarks:         req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) cancelRequisition(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.requisitions.Cancel(c.Request.Context(), principal, id, req.Version)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type openContractRequest struct {
	ContractNumber string          `json:"contract_number" binding:"required"`
	SupplierID     string          `json:"supplier_id" binding:"required"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"required"`
}

func (h *Handler) openContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req openContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplierID, err := uuid.Parse(strings.TrimSpace(req.SupplierID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier_id"})
		return
	}
	result, err := h.ledger.Open(c.Request.Context(), principal, service.OpenContractInput{
		ContractNumber: req.ContractNumber,
		SupplierID:     supplierID,
		TotalAmount:    req.TotalAmount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	result, err := h.ledger.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) contractStatement(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	contract, rows, err := h.ledger.Statement(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract, "transactions": rows})
}

func (h *Handler) contractStatementExport(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	contract, rows, err := h.ledger.Statement(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.statements.Generate(*contract, rows)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"statement-"+contract.ContractNumber+".xlsx\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

type deductContractRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	RequisitionID *string         `json:"requisition_id"`
	Remarks       string          `json:"remarks"`
}

func (h *Handler) deductContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req deductContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var requisitionID *uuid.UUID
	if req.RequisitionID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.RequisitionID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requisition_id"})
			return
		}
		requisitionID = &parsed
	}
	contract, row, err := h.ledger.Deduct(c.Request.Context(), principal, id, req.Amount, requisitionID, req.Remarks)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract, "transaction": row})
}

type adjustContractRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Remarks string          `json:"remarks" binding:"required"`
}

func (h *Handler) adjustContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req adjustContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, row, err := h.ledger.Adjust(c.Request.Context(), principal, id, req.Amount, req.Remarks)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract, "transaction": row})
}

type reserveSerialRequest struct {
	Kind          string `json:"kind" binding:"required"`
	ControlNumber string `json:"control_number"`
}

func (h *Handler) reserveSerial(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req reserveSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := model.DocumentKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	result, err := h.allocator.Reserve(c.Request.Context(), principal, kind, strings.TrimSpace(req.ControlNumber))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) listReservations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	kind := model.DocumentKind(strings.ToUpper(strings.TrimSpace(c.Query("kind"))))
	if kind != model.KindRIS && kind != model.KindDTT {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}
	result, err := h.allocator.List(c.Request.Context(), principal, kind)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitTripRequest struct {
	DriverID       string    `json:"driver_id" binding:"required"`
	VehicleID      string    `json:"vehicle_id" binding:"required"`
	Office         string    `json:"office"`
	Destination    string    `json:"destination" binding:"required"`
	Purposes       []string  `json:"purposes"`
	Passengers     []string  `json:"passengers"`
	PeriodStart    time.Time `json:"period_start" binding:"required"`
	PeriodEnd      time.Time `json:"period_end" binding:"required"`
	ReservedNumber string    `json:"reserved_number"`
}

func (h *Handler) submitTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req submitTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	driverID, err := uuid.Parse(strings.TrimSpace(req.DriverID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver_id"})
		return
	}
	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
		return
	}
	result, err := h.trips.Submit(c.Request.Context(), principal, service.SubmitTripInput{
		DriverID:       driverID,
		VehicleID:      vehicleID,
		Office:         req.Office,
		Destination:    req.Destination,
		Purposes:       req.Purposes,
		Passengers:     req.Passengers,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		ReservedNumber: strings.TrimSpace(req.ReservedNumber),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getTrip(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	result, err := h.trips.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type approveTripRequest struct {
	Version      int64  `json:"version"`
	SerialNumber string `json:"serial_number"`
}

func (h *Handler) approveTrip(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req approveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.trips.Approve(c.Request.Context(), principal, id, req.Version, strings.TrimSpace(req.SerialNumber))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) returnTrip(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.trips.Return(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

func (h *Handler) rejectTrip(c *gin.Context) {
	h.remarkedTransition(c, func(p model.Principal, id uuid.UUID, req remarksRequest) (any, error) {
		return h.trips.Reject(c.Request.Context(), p, id, req.Version, req.Remarks)
	})
}

type resubmitTripRequest struct {
	Version     int64     `json:"version"`
	Destination string    `json:"destination"`
	Purposes    []string  `json:"purposes"`
	Passengers  []string  `json:"passengers"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

func (h *Handler) resubmitTrip(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req resubmitTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.trips.Resubmit(c.Request.Context(), principal, id, req.Version, service.SubmitTripInput{
		Destination: req.Destination,
		Purposes:    req.Purposes,
		Passengers:  req.Passengers,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) cancelTrip(c *gin.Context) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.trips.Cancel(c.Request.Context(), principal, id, req.Version)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) remarkedTransition(c *gin.Context, call func(model.Principal, uuid.UUID, remarksRequest) (any, error)) {
	principal, id, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := call(principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) principalAndID(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return model.Principal{}, uuid.Nil, false
	}
	return principal, id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	var precondition *service.PreconditionError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":           "version conflict, reload the document",
			"current_status":  conflict.CurrentStatus,
			"current_version": conflict.CurrentVersion,
		})
	case errors.As(err, &precondition):
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error":             err.Error(),
			"expected_roles":    precondition.ExpectedRoles,
			"expected_statuses": precondition.ExpectedStatuses,
		})
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAdjustment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTransientStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store busy, retry the operation"})
	default:
		h.log.Error().Err(err).Msg("operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
