// Package api exposes the ingestion and chat workflows over HTTP.
package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innopdf/policy-agent/chat"
	"github.com/innopdf/policy-agent/ingestion"
	"github.com/innopdf/policy-agent/llm"
	"github.com/innopdf/policy-agent/store"
)

const maxUploadSize = 20 << 20

type Server struct {
	ingest *ingestion.Service
	chat   *chat.Service
	store  store.Store
	logger *log.Logger
	engine *gin.Engine
}

type chatRequest struct {
	Messages []llm.Message `json:"messages" binding:"required"`
}

type chatResponse struct {
	Role    string           `json:"role"`
	Content string           `json:"content"`
	Sources []sourcePayload  `json:"sources,omitempty"`
	Related []relatedPayload `json:"related,omitempty"`
}

type sourcePayload struct {
	Title           string   `json:"title"`
	PolicyTitle     string   `json:"policyTitle,omitempty"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Snippet         string   `json:"snippet"`
}

type relatedPayload struct {
	Title          string `json:"title"`
	PolicyTitle    string `json:"policyTitle,omitempty"`
	SharedKeywords int    `json:"sharedKeywords"`
}

type policyPayload struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Version       string    `json:"version"`
	EffectiveDate time.Time `json:"effectiveDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

type uploadResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Policy       policyPayload `json:"policy"`
	SectionCount int           `json:"sectionCount"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func New(ingest *ingestion.Service, chatSvc *chat.Service, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		ingest: ingest,
		chat:   chatSvc,
		store:  st,
		logger: logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = maxUploadSize

	engine.GET("/healthz", s.handleHealth)
	engine.POST("/v1/policies", s.handleUpload)
	engine.GET("/v1/policies", s.handleListPolicies)
	engine.POST("/v1/chat", s.handleChat)

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "No file provided"})
		return
	}

	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("File exceeds %d byte limit", maxUploadSize),
		})
		return
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".pdf" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Only PDF files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}

	result, err := s.ingest.IngestFile(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "Failed to process PDF", err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success:      true,
		Message:      "PDF successfully processed",
		Policy:       toPolicyPayload(result.Policy),
		SectionCount: result.SectionCount,
	})
}

func (s *Server) handleListPolicies(c *gin.Context) {
	policies, err := s.store.ListPolicies(c.Request.Context())
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	payload := make([]policyPayload, 0, len(policies))
	for _, policy := range policies {
		payload = append(payload, toPolicyPayload(policy))
	}

	c.JSON(http.StatusOK, gin.H{"policies": payload})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "올바른 메시지 형식이 아닙니다."})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "올바른 메시지 형식이 아닙니다."})
		return
	}
	if strings.TrimSpace(req.Messages[len(req.Messages)-1].Content) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "메시지 내용이 없습니다."})
		return
	}

	resp, err := s.chat.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "죄송합니다. 응답을 생성하는 중에 오류가 발생했습니다.", err)
		return
	}

	c.JSON(http.StatusOK, toChatResponse(resp))
}

func (s *Server) writeError(c *gin.Context, status int, message string, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	c.JSON(status, errorResponse{Error: message, Details: err.Error()})
}

func toPolicyPayload(policy store.Policy) policyPayload {
	return policyPayload{
		ID:            policy.ID.String(),
		Title:         policy.Title,
		Version:       policy.Version,
		EffectiveDate: policy.EffectiveDate,
		CreatedAt:     policy.CreatedAt,
	}
}

func toChatResponse(resp chat.Response) chatResponse {
	converted := chatResponse{
		Role:    llm.RoleAssistant,
		Content: resp.Answer,
	}

	for _, source := range resp.Sources {
		converted.Sources = append(converted.Sources, sourcePayload{
			Title:           source.Title,
			PolicyTitle:     source.PolicyTitle,
			Score:           source.Score,
			MatchedKeywords: source.MatchedKeywords,
			Snippet:         source.Snippet,
		})
	}

	for _, related := range resp.Related {
		converted.Related = append(converted.Related, relatedPayload{
			Title:          related.Title,
			PolicyTitle:    related.PolicyTitle,
			SharedKeywords: related.SharedKeywords,
		})
	}

	return converted
}
