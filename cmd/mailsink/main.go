package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

const outboxSize = 500

type SendMailRequest struct {
	EventID string `json:"event_id" binding:"required"`
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body"`
}

type SendMailResponse struct {
	MessageID  string    `json:"message_id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type StoredMail struct {
	SendMailRequest
	MessageID  string    `json:"message_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Sink is a stand-in mail relay. It keeps the most recent mails in memory
// and can be told to reject a share of them.
type Sink struct {
	mu         sync.Mutex
	acceptRate float64
	rng        *rand.Rand
	outbox     []StoredMail
}

func NewSink(acceptRate float64) *Sink {
	return &Sink{
		acceptRate: acceptRate,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Sink) accept(req SendMailRequest) (*SendMailResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &SendMailResponse{MessageID: uuid.NewString(), AcceptedAt: time.Now().UTC()}
	if s.rng.Float64() >= s.acceptRate {
		resp.Status = StatusRejected
		return resp, false
	}
	resp.Status = StatusAccepted
	s.outbox = append(s.outbox, StoredMail{SendMailRequest: req, MessageID: resp.MessageID, AcceptedAt: resp.AcceptedAt})
	if len(s.outbox) > outboxSize {
		s.outbox = s.outbox[len(s.outbox)-outboxSize:]
	}
	return resp, true
}

func (s *Sink) Outbox() []StoredMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredMail, len(s.outbox))
	copy(out, s.outbox)
	return out
}

type Handler struct {
	sink *Sink
}

func (h *Handler) Send(c *gin.Context) {
	var req SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	resp, ok := h.sink.accept(req)
	if !ok {
		log.Warn().Str("event_id", req.EventID).Str("to", req.To).Msg("mail rejected")
		c.JSON(http.StatusOK, resp)
		return
	}
	log.Info().
		Str("event_id", req.EventID).
		Str("message_id", resp.MessageID).
		Str("to", req.To).
		Str("subject", req.Subject).
		Msg("mail accepted")
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Outbox(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.sink.Outbox()})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}

func SetupRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/mail/send", h.Send)
		v1.GET("/mail/outbox", h.Outbox)
		v1.GET("/health", h.HealthCheck)
	}
	router.GET("/health", h.HealthCheck)
	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := getEnv("MAIL_SINK_ADDR", ":8090")
	acceptRate := getEnvFloat("ACCEPT_RATE", 1)

	log.Info().Str("addr", addr).Float64("accept_rate", acceptRate).Msg("starting mail sink")

	srv := &http.Server{
		Addr:         addr,
		Handler:      SetupRouter(&Handler{sink: NewSink(acceptRate)}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("mail sink stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
