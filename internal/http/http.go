package http

import (
	"github.com/gin-gonic/gin"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/http/middleware"
)

type APIService struct {
	engine  *gin.Engine
	context *appcontext.Context
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSMiddleware())

	service := &APIService{
		engine:  engine,
		context: ctx,
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	v1 := h.engine.Group("/api/v1")
	h.setupAuthRoutes(v1)
	h.setupProjectRoutes(v1)
	h.setupGondolaRoutes(v1)
	h.setupDocumentRoutes(v1)
	h.setupPhotoRoutes(v1)
	h.setupCertificateRoutes(v1)
	h.setupDashboardRoutes(v1)
}

func (h *APIService) setupAuthRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")

	auth.POST("/signup", Signup(h.context))
	auth.POST("/login", Login(h.context))
	auth.POST("/logout", Logout(h.context))
	auth.POST("/verify-email", VerifyEmail(h.context))
	auth.POST("/forgot-password", ForgotPassword(h.context))
	auth.POST("/reset-password", ResetPassword(h.context))
	auth.GET("/me", middleware.JWTAuthMiddleware(), GetUserInfo(h.context))
}

func (h *APIService) setupProjectRoutes(group *gin.RouterGroup) {
	projects := group.Group("/projects")
	projects.Use(middleware.JWTAuthMiddleware())

	projects.GET("/", GetProjects(h.context))
	projects.POST("/", CreateProject(h.context))
	projects.GET("/:projectID", GetProject(h.context))
	projects.PATCH("/:projectID", UpdateProject(h.context))
	projects.DELETE("/:projectID", DeleteProject(h.context))
}

func (h *APIService) setupGondolaRoutes(group *gin.RouterGroup) {
	gondolas := group.Group("/gondolas")
	gondolas.Use(middleware.JWTAuthMiddleware())

	gondolas.GET("/", GetGondolas(h.context))
	gondolas.POST("/", CreateGondola(h.context))
	gondolas.GET("/:gondolaID", GetGondola(h.context))
	gondolas.PUT("/:gondolaID", UpdateGondola(h.context))
	gondolas.DELETE("/:gondolaID", DeleteGondola(h.context))
}

func (h *APIService) setupDocumentRoutes(group *gin.RouterGroup) {
	documents := group.Group("/documents")
	documents.Use(middleware.JWTAuthMiddleware())

	documents.POST("/upload", UploadDocument(h.context))
	documents.POST("/certificate", UploadCertificate(h.context))
	documents.GET("/:documentID/download", DownloadDocument(h.context))
	documents.DELETE("/delete", DeleteDocument(h.context))
	documents.PATCH("/update-project-id", ReattachDocument(h.context))
}

func (h *APIService) setupPhotoRoutes(group *gin.RouterGroup) {
	photos := group.Group("/photos")
	photos.Use(middleware.JWTAuthMiddleware())

	photos.POST("/upload", UploadPhoto(h.context))
	photos.GET("/:photoID/download", DownloadPhoto(h.context))
	photos.DELETE("/delete", DeletePhoto(h.context))
}

func (h *APIService) setupCertificateRoutes(group *gin.RouterGroup) {
	certificates := group.Group("/certificate-expiries")
	certificates.Use(middleware.JWTAuthMiddleware())

	certificates.GET("/", GetCertificateExpiries(h.context))
	certificates.POST("/", CreateCertificateExpiry(h.context))
}

func (h *APIService) setupDashboardRoutes(group *gin.RouterGroup) {
	dashboard := group.Group("/dashboard")
	dashboard.Use(middleware.JWTAuthMiddleware())

	dashboard.GET("/", GetDashboard(h.context))
}
