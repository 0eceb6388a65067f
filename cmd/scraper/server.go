package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/school-scraper/scraper"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type statusServer struct {
	metrics  *scraper.Metrics
	progress *scraper.ProgressTracker
}

func newStatusRouter(metrics *scraper.Metrics, progress *scraper.ProgressTracker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	s := &statusServer{metrics: metrics, progress: progress}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", s.health)
	r.GET("/progress", s.listProgress)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}
	return r
}

func (s *statusServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *statusServer) listProgress(c *gin.Context) {
	snapshot := s.progress.Snapshot()
	out := make([]gin.H, 0, len(snapshot))
	for _, p := range snapshot {
		out = append(out, gin.H{
			"school":    p.School,
			"completed": p.Completed,
			"total":     p.Total,
			"percent":   p.Percent(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// startStatusServer serves metrics and progress on addr. An empty addr
// disables it and returns nil.
func startStatusServer(addr string, metrics *scraper.Metrics, progress *scraper.ProgressTracker) *http.Server {
	if addr == "" {
		return nil
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: newStatusRouter(metrics, progress),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed", slog.Any("error", err))
		}
	}()
	slog.Info("status server enabled", slog.String("addr", addr))
	return srv
}

func shutdownStatusServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("status server shutdown failed", slog.Any("error", err))
	}
}
