package agent

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"isolation/config"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/meta"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// FindMoveRequest carries the position to move in and the remaining budget.
type FindMoveRequest struct {
	State       game.Isolation `json:"state"`
	TimeLimitMs int            `json:"time_limit_ms" binding:"gte=0"`
	Memory      Memory         `json:"memory,omitempty"`
}

type FindMoveResponse struct {
	Action game.Action          `json:"action"`
	Memory Memory               `json:"memory,omitempty"`
	Metric metrics.SearchMetric `json:"metric"`
}

// Server answers move requests with a fresh policy per request, so concurrent
// games never share a search.
type Server struct {
	config config.AgentConfig
	seed   atomic.Uint64
}

func NewServer(cfg config.AgentConfig, seed uint64) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{config: cfg}
	s.seed.Store(seed)
	return s, nil
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/findmove", s.handleFindMove)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "strategy": s.config.Strategy})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// StartAgentServer serves the agent on the given port until it fails.
func StartAgentServer(port string, cfg config.AgentConfig, seed uint64) error {
	s, err := NewServer(cfg, seed)
	if err != nil {
		return err
	}
	log.Info().Msgf("[AgentServer] Starting %s agent server on :%s ...", cfg.Strategy, port)
	return s.Router().Run(":" + port)
}

func (s *Server) handleFindMove(c *gin.Context) {
	var req FindMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.State.TerminalTest() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "game is over - no moves allowed"})
		return
	}

	limit := meta.TIME_LIMIT
	if req.TimeLimitMs > 0 {
		limit = time.Duration(req.TimeLimitMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
	defer cancel()

	policy, err := FromConfig(s.config, s.seed.Add(1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	policy.SetContext(req.Memory)

	queue := NewActionQueue()
	err = policy.GetAction(ctx, req.State, queue)
	action, ok := queue.Last()
	if !ok {
		log.Warn().Err(err).Int("ply", req.State.PlyCount()).Msg("agent delivered no action")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "no action delivered"})
		return
	}
	if err != nil {
		log.Warn().Err(err).Int("ply", req.State.PlyCount()).Int("action", int(action)).Msg("answering with fallback action")
	}
	c.JSON(http.StatusOK, FindMoveResponse{
		Action: action,
		Memory: policy.Context(),
		Metric: policy.LastMetric(),
	})
}
