package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chnix17/janitorial-sub000/internal/service"
	"github.com/Chnix17/janitorial-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

type exportFunc func(ctx context.Context, viewer service.Viewer, id string) (*bytes.Buffer, string, error)

// ExportReport 导出对账报表
// GET /api/v1/assignments/:id/export
func (h *ExportHandler) ExportReport(c *gin.Context) {
	h.serve(c, h.exportSvc.ExportAssignmentReport, response.MIMEXlsx)
}

// ExportCalendar 导出巡检日历
// GET /api/v1/assignments/:id/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	h.serve(c, h.exportSvc.ExportAssignmentCalendar, response.MIMEIcs)
}

func (h *ExportHandler) serve(c *gin.Context, export exportFunc, contentType string) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	buf, filename, err := export(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, contentType, buf.Bytes())
}

func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, response.CodeExportFailed, err.Error())
	default:
		handleAttendanceError(c, err)
	}
}
