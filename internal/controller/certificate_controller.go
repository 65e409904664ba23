package controller

import (
	"safety_training_backend/internal/service"
	"safety_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	Enrollments  *service.EnrollmentService
	Certificates *service.CertificateService
}

func NewCertificateController(enrollments *service.EnrollmentService, certificates *service.CertificateService) *CertificateController {
	return &CertificateController{Enrollments: enrollments, Certificates: certificates}
}

// @Summary 获取培训证书
// @Description isExpired/isValid 每次读取即时计算
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /trainings/{id}/certificate [get]
func (c *CertificateController) Get(ctx *gin.Context) {
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

	view, err := c.Enrollments.GetCertificate(claims.WorkerID, uint(trainingID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 历史证书列表
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /certificates [get]
func (c *CertificateController) History(ctx *gin.Context) {
	claims := util.GetWorkerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.Certificates.History(claims.WorkerID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, certs)
}
