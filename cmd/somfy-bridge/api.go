package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	somfy "github.com/caarlos0/somfy-bridge"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Panel is what a single logged in session can do.
type Panel interface {
	State(ctx context.Context) (somfy.GeneralState, error)
	ZoneStates(ctx context.Context) (somfy.ZoneState, error)
	SetZone(ctx context.Context, zone somfy.Zone) error
	UnsetZone(ctx context.Context, zone somfy.Zone) error
}

// Executor runs fn within a fresh panel session, named after the operation
// it performs.
type Executor = func(ctx context.Context, operation string, fn func(p Panel) error) error

type api struct {
	execute Executor
}

func newRouter(execute Executor) *gin.Engine {
	h := &api{execute: execute}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := router.Group("/api")
	{
		group.GET("/ping", h.ping)
		group.GET("/state", h.state)
		group.GET("/zones", h.zones)
		group.POST("/zones/:zone/on", h.zoneOn)
		group.POST("/zones/:zone/off", h.zoneOff)
	}
	return router
}

func (h *api) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Somfy API is online.",
	})
}

func (h *api) state(c *gin.Context) {
	var state somfy.GeneralState
	if err := h.execute(c.Request.Context(), "state", func(p Panel) (err error) {
		state, err = p.State(c.Request.Context())
		return
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *api) zones(c *gin.Context) {
	var state somfy.ZoneState
	if err := h.execute(c.Request.Context(), "zones", func(p Panel) (err error) {
		state, err = p.ZoneStates(c.Request.Context())
		return
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *api) zoneOn(c *gin.Context) {
	zone, err := somfy.ParseZone(c.Param("zone"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.execute(c.Request.Context(), "zone_on", func(p Panel) error {
		return p.SetZone(c.Request.Context(), zone)
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": fmt.Sprintf("Zone %s activated", zone)})
}

func (h *api) zoneOff(c *gin.Context) {
	zone, err := somfy.ParseZone(c.Param("zone"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.execute(c.Request.Context(), "zone_off", func(p Panel) error {
		return p.UnsetZone(c.Request.Context(), zone)
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": fmt.Sprintf("Zone %s deactivated", zone)})
}

// respondError answers 400 for anything the panel (or the request) got wrong
// and 502 when the panel could not be talked to at all.
func respondError(c *gin.Context, err error) {
	code := http.StatusBadGateway
	if somfy.IsDomainError(err) {
		code = http.StatusBadRequest
	}
	log.Error("request failed", "path", c.Request.URL.Path, "code", code, "err", err)
	c.JSON(code, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(
			"request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
