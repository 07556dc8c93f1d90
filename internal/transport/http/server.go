package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ragqa/internal/adapter/collector"
	"ragqa/internal/transport/http/handler"
	"ragqa/internal/usecase"
)

// RouterDeps carries everything the API needs, injected by the caller.
type RouterDeps struct {
	Answerer  *usecase.Answerer
	Pipeline  *usecase.Ingest
	Manager   *collector.Manager
	RawDir    string
	IndexPath string
	GinMode   string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	mode := deps.GinMode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	qa := handler.NewQAHandler(deps.Answerer, deps.Pipeline, deps.Manager, deps.RawDir, deps.IndexPath)

	v1 := router.Group("/api/v1")
	v1.POST("/ask", qa.Ask)
	v1.POST("/ask/batch", qa.AskBatch)
	v1.GET("/search", qa.Search)
	v1.GET("/health", qa.Health)
	v1.GET("/info", qa.Info)
	v1.POST("/collect", qa.Collect)
	v1.POST("/index/rebuild", qa.RebuildIndex)

	return router
}

// NewServer wraps the router with timeouts. The pipeline itself never
// enforces deadlines; the server boundary does.
func NewServer(deps RouterDeps, host string, port, timeoutSeconds int) *http.Server {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      NewRouter(deps),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  2 * timeout,
	}
}
