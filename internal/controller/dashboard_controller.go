package controller

import (
	"safety_training_backend/internal/service"
	"safety_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Service *service.DashboardService
}

func NewDashboardController(svc *service.DashboardService) *DashboardController {
	return &DashboardController{Service: svc}
}

// @Summary 完成率汇总
// @Description 按 (公司, 培训) 汇总完成率，过滤条件可选
// @Tags 报表
// @Produce json
// @Security ApiKeyAuth
// @Param companyId query int false "公司ID"
// @Param trainingId query int false "培训ID"
// @Success 200 {object} util.Response
// @Router /admin/dashboard/completion [get]
func (c *DashboardController) Completion(ctx *gin.Context) {
	companyID := util.MustParseUint(ctx.Query("companyId"))
	trainingID := util.MustParseUint(ctx.Query("trainingId"))

	summary, err := c.Service.CompletionStats(ctx.Request.Context(), companyID, trainingID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 未报名员工列表
// @Tags 报表
// @Produce json
// @Security ApiKeyAuth
// @Param companyId query int true "公司ID"
// @Param trainingId query int true "培训ID"
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response
// @Router /admin/dashboard/not-enrolled [get]
func (c *DashboardController) NotEnrolled(ctx *gin.Context) {
	companyID := util.MustParseUint(ctx.Query("companyId"))
	trainingID := util.MustParseUint(ctx.Query("trainingId"))
	if companyID == 0 || trainingID == 0 {
		util.BadRequest(ctx, "companyId and trainingId are required")
		return
	}

	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	workers, total, err := c.Service.NotEnrolledWorkers(companyID, trainingID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  workers,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
