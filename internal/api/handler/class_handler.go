package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/service"
	pkgerrors "classhub/backend/pkg/errors"
	"classhub/backend/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// CreateClass 创建班级（教师）
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// GetClass 查询班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.classSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateClass 更新班级信息
// PUT /api/v1/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// ArchiveClass 归档班级
// POST /api/v1/classes/:id/archive
func (h *ClassHandler) ArchiveClass(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.classSvc.Archive(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMyClasses 我的班级（自建 + 已加入）
// GET /api/v1/classes
func (h *ClassHandler) ListMyClasses(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.classSvc.ListMine(c.Request.Context(), callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListMembers 班级成员列表
// GET /api/v1/classes/:id/members
func (h *ClassHandler) ListMembers(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.classSvc.ListMembers(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrClassArchived):
		response.Conflict(c, 14002, "班级已归档")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
