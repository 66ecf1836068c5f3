package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"classhub/backend/internal/service"
	"classhub/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoster 导出班级成员名册
// GET /api/v1/classes/:id/export/roster
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// ExportExamResults 导出考试成绩单
// GET /api/v1/exams/:id/export/results
func (h *ExportHandler) ExportExamResults(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportExamResults(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// writeXLSX 设置下载响应头并写入文件内容
func writeXLSX(c *gin.Context, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 16001, "考试不存在")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")
	case errors.Is(err, service.ErrExportNoMembers):
		response.BadRequest(c, 17001, "班级暂无成员")
	case errors.Is(err, service.ErrExportNoAttempts):
		response.BadRequest(c, 17002, "该考试暂无作答记录")
	default:
		response.InternalError(c)
	}
}
