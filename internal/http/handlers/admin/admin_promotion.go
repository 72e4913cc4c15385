package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/nhorsopheak/promotion-management/internal/http/response"
	"github.com/nhorsopheak/promotion-management/internal/repository"
	"github.com/nhorsopheak/promotion-management/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionRequest 创建/更新促销请求
type PromotionRequest struct {
	Code               string   `json:"code" binding:"required"`
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	Type               string   `json:"type" binding:"required"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Priority           int      `json:"priority"`
	Conditions         string   `json:"conditions" binding:"required"`
	UsageLimit         int      `json:"usage_limit"`
	UsageLimitPerUser  int      `json:"usage_limit_per_user"`
	RequiresMembership bool     `json:"requires_membership"`
	MembershipTiers    []string `json:"membership_tiers"`
}

func (r PromotionRequest) toServiceInput() (service.PromotionInput, error) {
	startDate, err := parseTimeNullable(r.StartDate)
	if err != nil {
		return service.PromotionInput{}, err
	}
	endDate, err := parseTimeNullable(r.EndDate)
	if err != nil {
		return service.PromotionInput{}, err
	}
	return service.PromotionInput{
		Code:               r.Code,
		Name:               r.Name,
		Description:        r.Description,
		Type:               r.Type,
		StartDate:          startDate,
		EndDate:            endDate,
		Priority:           r.Priority,
		Conditions:         r.Conditions,
		UsageLimit:         r.UsageLimit,
		UsageLimitPerUser:  r.UsageLimitPerUser,
		RequiresMembership: r.RequiresMembership,
		MembershipTiers:    r.MembershipTiers,
	}, nil
}

func respondPromotionError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "error.promotion_not_found", nil)
	case errors.Is(err, service.ErrPromotionCodeExists):
		respondError(c, response.CodeBadRequest, "error.promotion_code_exists", nil)
	case errors.Is(err, service.ErrPromotionStatusInvalid):
		respondError(c, response.CodeBadRequest, "error.promotion_status_invalid", nil)
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, "error.promotion_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}

// CreatePromotion 创建促销
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Create(input)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_create_failed")
		return
	}

	response.Success(c, promotion)
}

// UpdatePromotion 更新促销
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Update(uint(promotionID), input)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_update_failed")
		return
	}

	response.Success(c, promotion)
}

// ChangePromotionStatusRequest 促销状态迁移请求
type ChangePromotionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangePromotionStatus 迁移促销状态
func (h *Handler) ChangePromotionStatus(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req ChangePromotionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.ChangeStatus(uint(promotionID), req.Status)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_update_failed")
		return
	}

	response.Success(c, promotion)
}

// GetAdminPromotion 获取促销详情
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Get(uint(promotionID))
	if err != nil {
		respondPromotionError(c, err, "error.promotion_fetch_failed")
		return
	}

	response.Success(c, promotion)
}

// GetAdminPromotions 获取促销列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	promotions, total, err := h.PromotionAdminService.List(repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Type:     strings.TrimSpace(c.Query("type")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, promotions, pagination)
}

// DeletePromotion 删除促销（软删除）
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.PromotionAdminService.Delete(uint(promotionID)); err != nil {
		respondPromotionError(c, err, "error.promotion_delete_failed")
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// GetPromotionLogs 查询促销应用日志
func (h *Handler) GetPromotionLogs(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	logs, total, err := h.PromotionAdminService.Logs(repository.PromotionLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		PromotionID: uint(promotionID),
		Action:      strings.TrimSpace(c.Query("action")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, logs, pagination)
}

// GetPromotionStats 查询单个促销使用统计
func (h *Handler) GetPromotionStats(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	stats, err := h.PromotionAdminService.Stats(uint(promotionID))
	if err != nil {
		respondPromotionError(c, err, "error.promotion_fetch_failed")
		return
	}

	response.Success(c, stats)
}
