package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ragqa/internal/adapter/collector"
	"ragqa/internal/port"
	"ragqa/internal/transport/http/response"
	"ragqa/internal/usecase"
)

// MaxBatchQuestions caps one batch request.
const MaxBatchQuestions = 10

// QAHandler serves the question-answering API. Degraded answers are
// returned 200 with the error field set; HTTP errors are reserved for
// malformed requests and infrastructure failures.
type QAHandler struct {
	answerer  *usecase.Answerer
	pipeline  *usecase.Ingest
	manager   *collector.Manager
	rawDir    string
	indexPath string
	started   time.Time
}

func NewQAHandler(answerer *usecase.Answerer, pipeline *usecase.Ingest, manager *collector.Manager, rawDir, indexPath string) *QAHandler {
	return &QAHandler{
		answerer:  answerer,
		pipeline:  pipeline,
		manager:   manager,
		rawDir:    rawDir,
		indexPath: indexPath,
		started:   time.Now(),
	}
}

type AskRequest struct {
	Question    string   `json:"question" binding:"required"`
	TopK        int      `json:"top_k"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (r AskRequest) options() port.GenerateOptions {
	opts := port.GenerateOptions{MaxTokens: r.MaxTokens}
	if r.Temperature != nil {
		opts.Temperature = *r.Temperature
	}
	return opts
}

func (h *QAHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer := h.answerer.AnswerQuestion(req.Question, req.TopK, req.options())
	response.OK(c, answer)
}

type AskBatchRequest struct {
	Questions []string `json:"questions" binding:"required,min=1"`
	TopK      int      `json:"top_k"`
}

func (h *QAHandler) AskBatch(c *gin.Context) {
	var req AskBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if len(req.Questions) > MaxBatchQuestions {
		response.Error(c, http.StatusBadRequest, response.CodeTooManyItems,
			"at most "+strconv.Itoa(MaxBatchQuestions)+" questions per batch")
		return
	}

	answers := h.answerer.BatchAnswerQuestions(req.Questions, req.TopK, port.GenerateOptions{})
	response.OK(c, gin.H{"answers": answers, "count": len(answers)})
}

func (h *QAHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing query parameter q")
		return
	}

	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid k")
			return
		}
		k = parsed
	}

	results, err := h.pipeline.Search(query, k)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search failed")
		return
	}
	response.OK(c, gin.H{"query": query, "results": results, "count": len(results)})
}

func (h *QAHandler) Health(c *gin.Context) {
	stats := h.pipeline.IndexStats()
	response.OK(c, gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"indexed":        stats.TotalDocuments,
	})
}

func (h *QAHandler) Info(c *gin.Context) {
	model, dimension := h.pipeline.EmbedderInfo()
	response.OK(c, gin.H{
		"index":           h.pipeline.IndexStats(),
		"embedding_model": model,
		"dimension":       dimension,
		"collectors":      h.manager.Collectors(),
	})
}

type CollectRequest struct {
	Save bool `json:"save"`
}

func (h *QAHandler) Collect(c *gin.Context) {
	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// empty body means collect-and-save
		req.Save = true
	}

	report := h.manager.CollectAll(c.Request.Context(), req.Save)
	response.OK(c, report)
}

// RebuildIndex clears the live index and re-ingests every persisted
// collection batch.
func (h *QAHandler) RebuildIndex(c *gin.Context) {
	docs, err := collector.LoadBatches(h.rawDir)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to load raw data")
		return
	}
	if len(docs) == 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "no collected data to index")
		return
	}

	if err := h.pipeline.ClearIndex(); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to clear index")
		return
	}

	stats, err := h.pipeline.ProcessDocuments(docs, h.indexPath != "", h.indexPath)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeIndexEmpty, "failed to rebuild index")
		return
	}
	response.OK(c, stats)
}
