package chathttp

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"tradepersona/internal/agent"
	"tradepersona/internal/logger"
	"tradepersona/internal/persona"

	"github.com/gin-gonic/gin"
)

const traceHeader = "X-Trace-Id"

// Asker 由 agent.Agent 实现。
type Asker interface {
	Ask(ctx context.Context, question string) agent.Answer
	Persona() persona.Profile
}

// ChatRequest 兼容 question 与旧字段 query。
type ChatRequest struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}

func (r ChatRequest) text() string {
	if q := strings.TrimSpace(r.Question); q != "" {
		return q
	}
	return strings.TrimSpace(r.Query)
}

type ChatResponse struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Router 暴露问答与画像接口。
type Router struct {
	agent Asker
}

func NewRouter(a Asker) *Router {
	return &Router{agent: a}
}

// Register 将路由挂载到 /api 分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/chat", r.handleChat)
	group.GET("/persona", r.handlePersona)
	group.GET("/persona/chart", r.handlePersonaChart)
}

func (r *Router) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("[api] chat bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	q := req.text()
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query cannot be empty."})
		return
	}
	ans := r.agent.Ask(c.Request.Context(), q)
	logger.Infof("[api] chat ip=%s trace=%s intent=%s source=%s", c.ClientIP(), ans.TraceID, ans.Intent, ans.Source)
	if ans.TraceID != "" {
		c.Header(traceHeader, ans.TraceID)
	}
	c.JSON(http.StatusOK, ChatResponse{Question: q, Response: ans.Response})
}

func (r *Router) handlePersona(c *gin.Context) {
	c.JSON(http.StatusOK, r.agent.Persona())
}

func (r *Router) handlePersonaChart(c *gin.Context) {
	profile := r.agent.Persona()
	if profile.NoData {
		c.JSON(http.StatusNotFound, gin.H{"error": persona.NoDataMessage})
		return
	}
	var buf bytes.Buffer
	if err := persona.RenderChart(&buf, profile); err != nil {
		logger.Errorf("[api] persona chart failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
