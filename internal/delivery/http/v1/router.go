package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/internal/delivery/http/middleware"
	"portfolio-contact/internal/delivery/http/response"
	"portfolio-contact/internal/domain"
	"portfolio-contact/internal/usecase"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	Config    *config.Config
	Logger    *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	isProduction := deps.Config.Environment == "production"

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, isProduction)) // CORS must be first!
	r.Use(gin.Recovery())
	if !isProduction {
		r.Use(gin.Logger())
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Logger))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))

	// Public routes
	public := v1.Group("")
	public.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{PerMinute: deps.Config.APIRateLimitPerMinute}))
	NewContactHandler(public, deps.ContactUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// healthHandler godoc
// @Summary      Health Check
// @Description  Reports which delivery channels are configured and whether the ledger backend is reachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		response.Success(c, http.StatusOK, "System operational", healthUC.Check(c.Request.Context()))
	}
}
