package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"wallet/internal/config"
	"wallet/internal/service"
	"wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds every service the routes call into.
type Handler struct {
	db                 *gorm.DB
	rdb                *redis.Client
	log                *zap.Logger
	accountService     *service.AccountService
	transferService    *service.TransferService
	reversalService    *service.ReversalService
	historyService     *service.HistoryService
	beneficiaryService *service.BeneficiaryService
	categoryService    *service.CategoryService
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, notifier service.Notifier, log *zap.Logger) *Handler {
	return &Handler{
		db:                 db,
		rdb:                rdb,
		log:                log.Named("handler"),
		accountService:     service.NewAccountService(db, &cfg.Business, notifier, log),
		transferService:    service.NewTransferService(db, notifier, log),
		reversalService:    service.NewReversalService(db, rdb, cfg.Business.ReversalLockTTL, notifier, log),
		historyService:     service.NewHistoryService(db),
		beneficiaryService: service.NewBeneficiaryService(db),
		categoryService:    service.NewCategoryService(db),
	}
}

// ============================================================
// Account
// ============================================================

// OpenAccount POST /api/v1/account/open
func (h *Handler) OpenAccount(c *gin.Context) {
	var req service.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	req.UserID = currentUserID(c)

	account, err := h.accountService.Open(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, account)
}

// GetAccount GET /api/v1/account
func (h *Handler) GetAccount(c *gin.Context) {
	overview, err := h.accountService.GetOverview(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, overview)
}

// TopUp POST /api/v1/account/top-up
func (h *Handler) TopUp(c *gin.Context) {
	var req service.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	req.UserID = currentUserID(c)

	record, err := h.accountService.TopUp(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, record)
}

// ============================================================
// Transactions
// ============================================================

// ResolveAccount GET /api/v1/transaction/resolve/:account_number
func (h *Handler) ResolveAccount(c *gin.Context) {
	summary, err := h.accountService.ResolveAccount(c.Request.Context(), c.Param("account_number"), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, summary)
}

// Transfer POST /api/v1/transaction/send
func (h *Handler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	req.UserID = currentUserID(c)

	result, err := h.transferService.Transfer(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

// Reverse POST /api/v1/transaction/reverse
func (h *Handler) Reverse(c *gin.Context) {
	var req service.ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	req.UserID = currentUserID(c)

	result, err := h.reversalService.Reverse(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

// ListHistory GET /api/v1/transaction/history?page=&page_size=&status=&type=&session_id=&ref=
func (h *Handler) ListHistory(c *gin.Context) {
	var q service.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, "invalid query: "+err.Error())
		return
	}

	page, err := h.historyService.List(c.Request.Context(), currentUserID(c), &q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, page)
}

// ListBeneficiaries GET /api/v1/transaction/beneficiaries?name=
func (h *Handler) ListBeneficiaries(c *gin.Context) {
	beneficiaries, err := h.beneficiaryService.List(c.Request.Context(), currentUserID(c), c.Query("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, beneficiaries)
}

// GetBeneficiary GET /api/v1/transaction/beneficiaries/:id
func (h *Handler) GetBeneficiary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid beneficiary id")
		return
	}

	beneficiary, err := h.beneficiaryService.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, beneficiary)
}

// ============================================================
// Misc
// ============================================================

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories GET /api/v1/misc/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory POST /api/v1/misc/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, category)
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unavailable"
		healthy = false
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		status["redis"] = "unavailable"
		healthy = false
	}

	if !healthy {
		status["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	status["status"] = "ok"
	c.JSON(http.StatusOK, status)
}

// fail maps service errors onto the response envelope. Unexpected errors are logged
// and never shown to the caller.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		verr   *service.ValidationError
		denial *service.DenialError
	)
	switch {
	case errors.As(err, &verr):
		response.ParamError(c, verr.Message)
	case errors.As(err, &denial):
		response.BusinessError(c, denialCode(denial.Code), denial.Reason)
	case errors.Is(err, service.ErrPolicyEvaluation):
		h.log.Error("limit policy could not decide",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("user_id", currentUserID(c)),
			zap.Error(err))
		response.BusinessError(c, response.CodeLimitExceeded, "Transaction limits could not be verified")
	case errors.Is(err, service.ErrBeneficiaryNotFound):
		response.NotFound(c, response.CodeBeneficiaryNotFound, "Beneficiary not found")
	case errors.Is(err, service.ErrReversalBusy):
		response.TooManyRequests(c, "reversal already in progress, try again shortly")
	default:
		h.log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("user_id", currentUserID(c)),
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.Error(err))
		response.ServerError(c)
	}
}

func denialCode(code service.DenialCode) int {
	switch code {
	case service.DenyAccountNotFound:
		return response.CodeAccountNotFound
	case service.DenyInsufficientBalance:
		return response.CodeBalanceNotEnough
	case service.DenyTransferLimit, service.DenyDailyLimit, service.DenyMaxBalance:
		return response.CodeLimitExceeded
	case service.DenyNameMismatch:
		return response.CodeNameMismatch
	case service.DenySelfTransfer:
		return response.CodeSelfTransfer
	case service.DenyTransactionNotFound:
		return response.CodeTransactionNotFound
	case service.DenyNotReversible:
		return response.CodeNotReversible
	default:
		return response.CodeBusinessError
	}
}
