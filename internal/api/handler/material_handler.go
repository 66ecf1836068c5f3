package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/service"
	"classhub/backend/pkg/response"
)

// MaterialHandler 资料模块 HTTP 处理器
type MaterialHandler struct {
	materialSvc service.MaterialService
}

// NewMaterialHandler 创建 MaterialHandler
func NewMaterialHandler(materialSvc service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialSvc: materialSvc}
}

// CreateMaterial 上传资料元数据
// POST /api/v1/classes/:id/materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.materialSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMaterials 班级资料列表
// GET /api/v1/classes/:id/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.materialSvc.ListByClass(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, result)
}

// GetMaterial 查询资料详情
// GET /api/v1/materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.materialSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateMaterial 更新资料
// PUT /api/v1/materials/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.materialSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteMaterial 删除资料
// DELETE /api/v1/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.materialSvc.Delete(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *MaterialHandler) handleMaterialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMaterialNotFound):
		response.NotFound(c, 15001, "资料不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrClassArchived):
		response.Conflict(c, 14002, "班级已归档")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")
	default:
		response.InternalError(c)
	}
}
