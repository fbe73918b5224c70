package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/David-Jacks/faitherpa/internal/service"
	"github.com/David-Jacks/faitherpa/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ContributionHandler 负责认捐相关接口
type ContributionHandler struct {
	Ledger *service.Ledger
}

func NewContributionHandler(ledger *service.Ledger) *ContributionHandler {
	return &ContributionHandler{Ledger: ledger}
}

// ---------- 请求结构 ----------

type createContributionReq struct {
	Amount      *decimal.Decimal `json:"amount"` // 指针区分"没传"和"传了 0"
	IsAnonymous bool             `json:"isAnonymous"`
	IsRepayable bool             `json:"isRepayable"`
	Note        string           `json:"note"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phoneNumber"`
	Password    string           `json:"password"`
}

// ---------- 创建 ----------

func (h *ContributionHandler) Create(c *gin.Context) {
	var req createContributionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidRequest, "invalid request body")
		return
	}

	if req.Amount != nil {
		if err := util.ValidateAmount(*req.Amount); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeAmountRequired, err.Error())
			return
		}
	}

	user, contrib, err := h.Ledger.CreateContribution(c.Request.Context(), service.CreateContributionInput{
		Amount:      req.Amount,
		IsAnonymous: req.IsAnonymous,
		IsRepayable: req.IsRepayable,
		Note:        req.Note,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAmountRequired):
			util.Error(c, http.StatusBadRequest, util.CodeAmountRequired, "")
		case errors.Is(err, service.ErrNameRequired):
			util.Error(c, http.StatusBadRequest, util.CodeNameRequired, "")
		default:
			util.Error(c, http.StatusInternalServerError, "create_contribution_failed", "")
		}
		return
	}

	util.Success(c, http.StatusCreated, util.Response{
		"user":         user,
		"contribution": contrib,
	})
}

// ---------- 列表 / 总额 ----------

func (h *ContributionHandler) List(c *gin.Context) {
	contributions, err := h.Ledger.ListContributions(c.Request.Context())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "list_contributions_failed", "")
		return
	}
	util.Success(c, http.StatusOK, util.Response{"contributions": contributions})
}

func (h *ContributionHandler) Total(c *gin.Context) {
	total, err := h.Ledger.Total(c.Request.Context())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "get_total_failed", "")
		return
	}
	util.Success(c, http.StatusOK, util.Response{"total": total})
}

// ---------- 确认 ----------

func (h *ContributionHandler) Confirm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeContributionNotFound, "")
		return
	}

	contrib, err := h.Ledger.Confirm(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeContributionNotFound, "")
		} else {
			util.Error(c, http.StatusInternalServerError, "confirm_failed", "")
		}
		return
	}

	util.Success(c, http.StatusOK, util.Response{"contribution": contrib})
}

// ConfirmContributor 把一个贡献者名下所有未确认的认捐一次性确认。
// 没有可确认的也算成功，modifiedCount 为 0。
func (h *ContributionHandler) ConfirmContributor(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeUserIDRequired, "")
		return
	}

	modified, err := h.Ledger.ConfirmAllFor(c.Request.Context(), uint(userID))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "confirm_contributor_failed", "")
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"success":       true,
		"modifiedCount": modified,
	})
}

// ---------- 级联删除 ----------

func (h *ContributionHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeContributionNotFound, "")
		return
	}

	if err := h.Ledger.DeleteCascade(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeContributionNotFound, "")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeDeleteFailed, "")
		}
		return
	}

	util.Success(c, http.StatusOK, util.Response{"success": true})
}
