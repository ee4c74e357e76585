package handler

import (
	accountapp "github.com/Lion1208/fastpay/internal/application/account"
	"github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles partner account HTTP requests
type AccountHandler struct {
	BaseHandler
	accountService    *accountapp.Service
	commissionService *ledger.CommissionService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *accountapp.Service, commissionService *ledger.CommissionService) *AccountHandler {
	return &AccountHandler{
		accountService:    accountService,
		commissionService: commissionService,
	}
}

// UpdateProfileRequest represents the request body for profile updates
type UpdateProfileRequest struct {
	PixKey     string `json:"pix_key" binding:"required,max=140"`
	PixKeyType string `json:"pix_key_type" binding:"required,oneof=cpf email phone random"`
}

// Me godoc
// @Summary      Get own account
// @Description  Returns the authenticated partner's account
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.AccountResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	response, err := h.accountService.Get(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// UpdateProfile godoc
// @Summary      Update payout PIX key
// @Description  Sets the partner's stored PIX key for withdrawals
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile data"
// @Success      200 {object} dto.Response{data=identity.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	response, err := h.accountService.UpdateProfile(c.Request.Context(), accountID, accountapp.UpdateProfileInput{
		PixKey:     req.PixKey,
		PixKeyType: req.PixKeyType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Dashboard godoc
// @Summary      Partner dashboard
// @Description  Returns balances, volume and referral numbers with a daily deposit chart
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=accountapp.DashboardResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/dashboard [get]
func (h *AccountHandler) Dashboard(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	response, err := h.accountService.Dashboard(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListReferees godoc
// @Summary      List referees
// @Description  Lists accounts registered under the partner's code
// @Tags         account
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]accountapp.RefereeResponse}
// @Router       /account/referees [get]
func (h *AccountHandler) ListReferees(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	referees, total, err := h.accountService.ListReferees(c.Request.Context(), accountID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, referees, total, req.Page, req.PageSize)
}

// ListCommissions godoc
// @Summary      List referral commissions
// @Description  Lists commissions the partner earned from referee deposits
// @Tags         account
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ledger.CommissionResponse}
// @Router       /account/commissions [get]
func (h *AccountHandler) ListCommissions(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	commissions, total, err := h.commissionService.ListCommissions(c.Request.Context(), accountID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, commissions, total, req.Page, req.PageSize)
}

// PublicPage godoc
// @Summary      Referral landing page
// @Description  Returns the public payload for a partner's referral code
// @Tags         public
// @Produce      json
// @Param        code path string true "Referral code"
// @Success      200 {object} dto.Response{data=accountapp.PublicPageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/{code} [get]
func (h *AccountHandler) PublicPage(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Referral code is required")
		return
	}

	response, err := h.accountService.PublicPage(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
