package handler

import (
	"context"

	accountapp "github.com/Lion1208/fastpay/internal/application/account"
	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	platformapp "github.com/Lion1208/fastpay/internal/application/platform"
	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles administrative HTTP requests
type AdminHandler struct {
	BaseHandler
	accountService    *accountapp.Service
	withdrawalService *ledgerapp.WithdrawalService
	settingsService   *platformapp.SettingsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	accountService *accountapp.Service,
	withdrawalService *ledgerapp.WithdrawalService,
	settingsService *platformapp.SettingsService,
) *AdminHandler {
	return &AdminHandler{
		accountService:    accountService,
		withdrawalService: withdrawalService,
		settingsService:   settingsService,
	}
}

// UpdateFeesRequest represents per-account fee overrides
type UpdateFeesRequest struct {
	DepositPercent    *string `json:"deposit_percent"`
	DepositFixed      *string `json:"deposit_fixed"`
	WithdrawalPercent *string `json:"withdrawal_percent"`
	TransferPercent   *string `json:"transfer_percent"`
}

// UpdateSettingsRequest represents platform settings overrides
type UpdateSettingsRequest struct {
	CommissionPercent       *string `json:"commission_percent"`
	ReferralVolumeThreshold *string `json:"referral_volume_threshold"`
	ReferralSlotsPerGrant   *int    `json:"referral_slots_per_grant"`
	MinWithdrawal           *string `json:"min_withdrawal"`
	MinTransfer             *string `json:"min_transfer"`
}

// ListAccounts godoc
// @Summary      List accounts
// @Description  Lists all accounts with optional role, status and search filters
// @Tags         admin
// @Produce      json
// @Param        role query string false "Filter by role" Enums(admin, partner)
// @Param        status query string false "Filter by status" Enums(active, blocked)
// @Param        search query string false "Search by name or code"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]identity.AccountResponse}
// @Router       /admin/accounts [get]
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	filter := account.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	}
	if role := c.Query("role"); role != "" {
		r := account.Role(role)
		filter.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := account.Status(status)
		filter.Status = &s
	}

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, accounts, total, req.Page, req.PageSize)
}

// GetAccount godoc
// @Summary      Get an account
// @Description  Returns any account by ID
// @Tags         admin
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} dto.Response{data=identity.AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/accounts/{id} [get]
func (h *AdminHandler) GetAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	response, err := h.accountService.Get(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// BlockAccount godoc
// @Summary      Block an account
// @Description  Blocks a partner account from transacting
// @Tags         admin
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/accounts/{id}/block [post]
func (h *AdminHandler) BlockAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.Block(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UnblockAccount godoc
// @Summary      Unblock an account
// @Description  Reactivates a blocked partner account
// @Tags         admin
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/accounts/{id}/unblock [post]
func (h *AdminHandler) UnblockAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.Unblock(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateFees godoc
// @Summary      Override account fees
// @Description  Sets per-account fee overrides; omitted fields keep their value
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        request body UpdateFeesRequest true "Fee overrides"
// @Success      200 {object} dto.Response{data=identity.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/accounts/{id}/fees [put]
func (h *AdminHandler) UpdateFees(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req UpdateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := accountapp.UpdateFeesInput{}
	if input.DepositPercent, err = toDecimalPtr(req.DepositPercent); err != nil {
		h.BadRequest(c, "Invalid deposit_percent")
		return
	}
	if input.DepositFixed, err = toDecimalPtr(req.DepositFixed); err != nil {
		h.BadRequest(c, "Invalid deposit_fixed")
		return
	}
	if input.WithdrawalPercent, err = toDecimalPtr(req.WithdrawalPercent); err != nil {
		h.BadRequest(c, "Invalid withdrawal_percent")
		return
	}
	if input.TransferPercent, err = toDecimalPtr(req.TransferPercent); err != nil {
		h.BadRequest(c, "Invalid transfer_percent")
		return
	}

	response, err := h.accountService.UpdateFees(c.Request.Context(), accountID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Stats godoc
// @Summary      Platform statistics
// @Description  Returns platform-wide account and withdrawal counts
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=accountapp.AdminStatsResponse}
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	response, err := h.accountService.AdminStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListWithdrawals godoc
// @Summary      List all withdrawals
// @Description  Lists payout requests across accounts, optionally by status
// @Tags         admin
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, approved, rejected, paid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ledgerapp.WithdrawalResponse}
// @Router       /admin/withdrawals [get]
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	status, ok := withdrawalStatusFilter(c)
	if !ok {
		h.BadRequest(c, "Invalid status filter")
		return
	}

	withdrawals, total, err := h.withdrawalService.ListWithdrawals(c.Request.Context(), nil, status, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, withdrawals, total, req.Page, req.PageSize)
}

// ApproveWithdrawal godoc
// @Summary      Approve a withdrawal
// @Description  Approves a pending payout request
// @Tags         admin
// @Produce      json
// @Param        id path string true "Withdrawal ID"
// @Success      200 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/withdrawals/{id}/approve [post]
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	h.reviewWithdrawal(c, h.withdrawalService.Approve)
}

// RejectWithdrawal godoc
// @Summary      Reject a withdrawal
// @Description  Rejects a pending payout request and refunds the hold
// @Tags         admin
// @Produce      json
// @Param        id path string true "Withdrawal ID"
// @Success      200 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/withdrawals/{id}/reject [post]
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	h.reviewWithdrawal(c, h.withdrawalService.Reject)
}

// MarkWithdrawalPaid godoc
// @Summary      Mark a withdrawal paid
// @Description  Records that an approved payout was sent
// @Tags         admin
// @Produce      json
// @Param        id path string true "Withdrawal ID"
// @Success      200 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/withdrawals/{id}/paid [post]
func (h *AdminHandler) MarkWithdrawalPaid(c *gin.Context) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID")
		return
	}

	response, err := h.withdrawalService.MarkPaid(c.Request.Context(), withdrawalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetSettings godoc
// @Summary      Get platform settings
// @Description  Returns the runtime platform settings
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=platformapp.SettingsResponse}
// @Router       /admin/settings [get]
func (h *AdminHandler) GetSettings(c *gin.Context) {
	response, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// UpdateSettings godoc
// @Summary      Update platform settings
// @Description  Applies settings overrides; omitted fields keep their value
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body UpdateSettingsRequest true "Settings overrides"
// @Success      200 {object} dto.Response{data=platformapp.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := platformapp.UpdateSettingsInput{
		ReferralSlotsPerGrant: req.ReferralSlotsPerGrant,
	}
	var err error
	if input.CommissionPercent, err = toDecimalPtr(req.CommissionPercent); err != nil {
		h.BadRequest(c, "Invalid commission_percent")
		return
	}
	if input.ReferralVolumeThreshold, err = toDecimalPtr(req.ReferralVolumeThreshold); err != nil {
		h.BadRequest(c, "Invalid referral_volume_threshold")
		return
	}
	if input.MinWithdrawal, err = toDecimalPtr(req.MinWithdrawal); err != nil {
		h.BadRequest(c, "Invalid min_withdrawal")
		return
	}
	if input.MinTransfer, err = toDecimalPtr(req.MinTransfer); err != nil {
		h.BadRequest(c, "Invalid min_transfer")
		return
	}

	response, err := h.settingsService.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// reviewWithdrawal runs an admin review action on a withdrawal
func (h *AdminHandler) reviewWithdrawal(c *gin.Context, action func(ctx context.Context, withdrawalID, reviewerID uuid.UUID) (*ledgerapp.WithdrawalResponse, error)) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID")
		return
	}

	reviewerID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	response, err := action(c.Request.Context(), withdrawalID, reviewerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
