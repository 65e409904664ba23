package controller

import (
	"safety_training_backend/internal/service"
	"safety_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	Service *service.EnrollmentService
}

func NewEnrollmentController(svc *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{Service: svc}
}

// @Summary 我的培训列表
// @Tags 培训学习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /trainings [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.Service.ListForWorker(claims.WorkerID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary 打开培训会话
// @Description 返回培训内容、报名状态、门控起点和个人固定顺序的卷面
// @Tags 培训学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/session [get]
func (c *EnrollmentController) OpenSession(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	session, err := c.Service.OpenSession(ctx.Request.Context(), claims.WorkerID, uint(trainingID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 关闭培训会话
// @Tags 培训学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/session [delete]
func (c *EnrollmentController) CloseSession(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	c.Service.CloseSession(claims.WorkerID, uint(trainingID))
	util.Success(ctx, nil)
}

type TrackRequest struct {
	SlideIndex *int `json:"slideIndex" binding:"required"`
}

// @Summary 上报幻灯片进度
// @Description 幂等地持久化断点位置
// @Tags 培训学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Param body body TrackRequest true "幻灯片下标"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/track [post]
func (c *EnrollmentController) Track(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.TrackSlideProgress(claims.WorkerID, uint(trainingID), *req.SlideIndex); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

type SubmitQuizRequest struct {
	Answers map[uint]uint `json:"answers" binding:"required"`
}

// @Summary 提交考核答卷
// @Description 答卷必须覆盖全部题目；通过时签发证书
// @Tags 培训学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Param body body SubmitQuizRequest true "题目到所选选项的映射"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/submit [post]
func (c *EnrollmentController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitQuiz(claims.WorkerID, uint(trainingID), req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 完成无考核培训
// @Description 仅对没有题目的培训有效
// @Tags 培训学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/complete [post]
func (c *EnrollmentController) CompleteWithoutQuiz(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	enrollment, err := c.Service.CompleteWithoutQuiz(claims.WorkerID, uint(trainingID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary 重新报名
// @Description 仅当证书已过期时可自助重新报名
// @Tags 培训学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/reenroll [post]
func (c *EnrollmentController) ReEnroll(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	enrollment, err := c.Service.ReEnroll(claims.WorkerID, uint(trainingID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

type BulkEnrollRequest struct {
	SapIDs []string `json:"sapIds" binding:"required"`
}

// @Summary 批量报名
// @Tags 培训管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Param body body BulkEnrollRequest true "工号列表"
// @Success 200 {object} util.Response
// @Router /admin/trainings/{id}/enrollments [post]
func (c *EnrollmentController) BulkEnroll(ctx *gin.Context) {
	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req BulkEnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.Service.BulkEnroll(uint(trainingID), req.SapIDs)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"enrolled": created})
}

// @Summary 培训的报名列表
// @Tags 培训管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response
// @Router /admin/trainings/{id}/enrollments [get]
func (c *EnrollmentController) ListForTraining(ctx *gin.Context) {
	trainingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	enrollments, total, err := c.Service.ListForTraining(uint(trainingID), page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  enrollments,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 强制重置报名
// @Description 主管/管理员专用，绕过证书过期校验
// @Tags 培训管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Success 200 {object} util.Response
// @Router /admin/enrollments/{id}/reset [post]
func (c *EnrollmentController) AdminReset(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	enrollment, err := c.Service.AdminReset(uint(enrollmentID), claims)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}
