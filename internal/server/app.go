package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "carecompass/backend/docs"
	"carecompass/backend/internal/config"
	"carecompass/backend/internal/db"
)

const serviceName = "carecompass-api"

// Dependencies are the external collaborators. A nil RateLimiter disables
// rate limiting; every other field is required.
type Dependencies struct {
	AI          AIClient
	Places      PlacesClient
	Vision      VisionClient
	Store       RecordStore
	Auth        AuthAdmin
	DB          *db.Supervisor
	RateLimiter RateLimiter
}

type App struct {
	cfg     config.Config
	log     *zap.Logger
	ai      AIClient
	places  PlacesClient
	vision  VisionClient
	store   RecordStore
	auth    AuthAdmin
	db      *db.Supervisor
	limiter RateLimiter
	now     func() time.Time
}

type AuthUser struct {
	ID    string
	Email string
}

func New(cfg config.Config, logger *zap.Logger, deps Dependencies) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:     cfg,
		log:     logger,
		ai:      deps.AI,
		places:  deps.Places,
		vision:  deps.Vision,
		store:   deps.Store,
		auth:    deps.Auth,
		db:      deps.DB,
		limiter: deps.RateLimiter,
		now:     time.Now,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(a.requestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(a.cfg.CORSAllowOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)
	router.GET("/emergency", a.emergency)
	router.POST("/request-password-reset", a.requestPasswordReset)
	router.POST("/verify-password-reset", a.verifyPasswordReset)
	if a.cfg.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	}

	gated := router.Group("/")
	gated.Use(a.authMiddleware())

	modelBacked := gated.Group("/")
	modelBacked.Use(a.rateLimitMiddleware())
	modelBacked.POST("/analyze", a.analyze)
	modelBacked.POST("/analyze-trends", a.analyzeTrends)
	modelBacked.POST("/api/ask", a.ask)
	modelBacked.POST("/photo-analyze", a.photoAnalyze)
	modelBacked.POST("/analyze-lab-report", a.analyzeLabReport)
	modelBacked.POST("/vision", a.visionOCR)

	gated.POST("/api/history", a.saveHistory)
	gated.GET("/api/history", a.listHistory)
	gated.GET("/api/history/export.xlsx", a.exportHistoryXLSX)
	gated.POST("/api/doctors", a.findDoctors)
	gated.GET("/api/doctors", a.findDoctors)
	gated.POST("/appointments", a.bookAppointment)
	gated.POST("/delete-account", a.deleteAccount)

	return router
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// health godoc
// @Summary Liveness and readiness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (a *App) health(c *gin.Context) {
	database := db.StateFailed.String()
	if a.db != nil {
		database = a.db.State().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  serviceName,
		"database": database,
	})
}

func (a *App) emergency(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"call": "911"})
}

func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if user, ok := authUserFromContext(c); ok {
			fields = append(fields, zap.String("user_id", user.ID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			a.log.Warn("request completed", fields...)
			return
		}
		a.log.Info("request completed", fields...)
	}
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.JWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, "Invalid token payload")
			return
		}
		if a.cfg.JWTAudience != "" && !claimHasAudience(claims["aud"], a.cfg.JWTAudience) {
			writeError(c, http.StatusUnauthorized, "Invalid token audience")
			return
		}
		if a.cfg.JWTIssuer != "" {
			issuer, _ := claims["iss"].(string)
			if issuer != a.cfg.JWTIssuer {
				writeError(c, http.StatusUnauthorized, "Invalid token issuer")
				return
			}
		}
		sub, _ := claims["sub"].(string)
		sub = strings.TrimSpace(sub)
		if sub == "" {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}
		email, _ := claims["email"].(string)

		c.Set("authUser", AuthUser{ID: sub, Email: strings.TrimSpace(email)})
		c.Next()
	}
}

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}

func authUserFromContext(c *gin.Context) (AuthUser, bool) {
	raw, ok := c.Get("authUser")
	if !ok {
		return AuthUser{}, false
	}
	user, ok := raw.(AuthUser)
	return user, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
