package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/service"
	"classhub/backend/pkg/metrics"
	"classhub/backend/pkg/response"
)

// InviteHandler 邀请码模块 HTTP 处理器
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler 创建 InviteHandler
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// CreateInvite 签发邀请码（班级管理者）
// POST /api/v1/classes/:id/invites
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.inviteSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.NotFound(c, 14001, "班级不存在")
		case errors.Is(err, service.ErrClassArchived):
			response.Conflict(c, 14002, "班级已归档")
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, 10003, "无权操作")
		case errors.Is(err, service.ErrGenerationExhausted):
			response.Error(c, http.StatusServiceUnavailable, 13005, "邀请码生成冲突，请稍后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListInvites 班级邀请码列表（班级管理者）
// GET /api/v1/classes/:id/invites
func (h *InviteHandler) ListInvites(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.inviteSvc.ListByClass(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.NotFound(c, 14001, "班级不存在")
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, 10003, "无权操作")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// PreviewInvite 预检邀请码，无副作用
// GET /api/v1/invites/:code
func (h *InviteHandler) PreviewInvite(c *gin.Context) {
	result, err := h.inviteSvc.Preview(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			response.NotFound(c, 13001, "邀请码不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RedeemInvite 兑换邀请码加入班级
// POST /api/v1/invites/:code/redeem
func (h *InviteHandler) RedeemInvite(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.inviteSvc.Redeem(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			metrics.InviteRedemptions.WithLabelValues("invalid").Inc()
			response.NotFound(c, 13001, "邀请码不存在")
		case errors.Is(err, service.ErrInviteExpired):
			metrics.InviteRedemptions.WithLabelValues("expired").Inc()
			response.Gone(c, 13002, "邀请码已过期")
		case errors.Is(err, service.ErrInviteExhausted):
			metrics.InviteRedemptions.WithLabelValues("exhausted").Inc()
			response.Conflict(c, 13003, "邀请码使用次数已用尽")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			metrics.InviteRedemptions.WithLabelValues("duplicate").Inc()
			response.Conflict(c, 13004, "已是该班级成员")
		case errors.Is(err, service.ErrClassArchived):
			metrics.InviteRedemptions.WithLabelValues("invalid").Inc()
			response.Conflict(c, 14002, "班级已归档")
		default:
			response.InternalError(c)
		}
		return
	}

	metrics.InviteRedemptions.WithLabelValues("success").Inc()
	response.OK(c, result)
}
