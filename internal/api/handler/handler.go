package handler

import "guidance-planner/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	StudySlot *StudySlotHandler
	AutoFill  *AutoFillHandler
	Progress  *ProgressHandler
	Course    *CourseHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合，并注册自定义绑定校验规则
func NewHandler(svc *service.Service) *Handler {
	RegisterValidators()
	return &Handler{
		StudySlot: NewStudySlotHandler(svc.StudySlot),
		AutoFill:  NewAutoFillHandler(svc.AutoFill),
		Progress:  NewProgressHandler(svc.Progress),
		Course:    NewCourseHandler(svc.Course),
		Export:    NewExportHandler(svc.Export),
	}
}
