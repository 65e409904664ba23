package middleware

import (
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware 角色准入；管理员拥有全部主管权限，直接放行
func RoleMiddleware(roles ...model.WorkerRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetWorkerFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if claims.Role == model.RoleAdmin {
				hasRole = true
				break
			}
			if claims.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type WorkerActivityRepo interface {
	UpdateLastSeen(workerID uint) error
}

func ActivityMiddleware(repo WorkerActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetWorkerFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go repo.UpdateLastSeen(claims.WorkerID)
		}
		c.Next()
	}
}
