package controller

import (
	"safety_training_backend/internal/service"
	"safety_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	Service *service.TrainingService
}

func NewTrainingController(svc *service.TrainingService) *TrainingController {
	return &TrainingController{Service: svc}
}

// @Summary 创建培训
// @Tags 培训管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.TrainingReq true "培训内容"
// @Success 201 {object} util.Response
// @Router /admin/trainings [post]
func (c *TrainingController) Create(ctx *gin.Context) {
	var req service.TrainingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	training, err := c.Service.Create(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, training)
}

// @Summary 更新培训
// @Tags 培训管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Param body body service.TrainingReq true "培训内容"
// @Success 200 {object} util.Response
// @Router /admin/trainings/{id} [put]
func (c *TrainingController) Update(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.TrainingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	training, err := c.Service.Update(uint(id), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, training)
}

// @Summary 删除培训
// @Tags 培训管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /admin/trainings/{id} [delete]
func (c *TrainingController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.Delete(uint(id)); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 培训详情（含幻灯片、题目和标准答案）
// @Tags 培训管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /admin/trainings/{id} [get]
func (c *TrainingController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	training, err := c.Service.Get(uint(id))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, training)
}

// @Summary 培训列表
// @Tags 培训管理
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response
// @Router /admin/trainings [get]
func (c *TrainingController) List(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	trainings, total, err := c.Service.List(page, limit, false)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  trainings,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
