package bootstrap

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/promptshelf/promptshelf-backend/internal/api/http"
	"github.com/promptshelf/promptshelf-backend/internal/api/http/middleware"
	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
	prompthttp "github.com/promptshelf/promptshelf-backend/internal/prompts/http"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/service"
)

// NetlifyBase is the path prefix older browser builds call the API under
const NetlifyBase = "/.netlify/functions"

type RouterDeps struct {
	ServiceName string
	Version     string
	Store       blobstore.Store
	RateRPS     float64
	RateBurst   int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		OptionsResponseStatusCode: http.StatusOK,
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(prompthttp.NoMethod("", NetlifyBase))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	listRepo := repository.NewListRepository(dep.Store)
	promptHandler := prompthttp.New(
		service.NewPromptService(listRepo),
		service.NewSessionService(listRepo),
	)

	var sessionMiddleware []gin.HandlerFunc
	if dep.RateRPS > 0 {
		sessionMiddleware = append(sessionMiddleware, middleware.NewRateLimiter(dep.RateRPS, dep.RateBurst).Middleware())
	}

	promptHandler.Register(&r.RouterGroup, sessionMiddleware...)
	promptHandler.Register(r.Group(NetlifyBase), sessionMiddleware...)

	return r
}
