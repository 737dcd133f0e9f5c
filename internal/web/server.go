// Package web serves the blog front-end: the post grid, the create-post form
// and the operational endpoints.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdulachik/blogfront/internal/health"
	"github.com/abdulachik/blogfront/internal/post"
)

// SessionCookie names the cookie carrying the browser's session ID.
const SessionCookie = "blogfront_session"

const sessionKey = "session"

//go:embed templates/*.tmpl
var templateFS embed.FS

// PostLister fetches the post list.
type PostLister interface {
	FetchPosts(ctx context.Context) ([]post.Post, error)
}

// Config holds the router's collaborators and limits.
type Config struct {
	Posts    PostLister
	Sessions *Registry
	Health   *health.Tracker

	PlaceholderCount int
	ExcerptLength    int
	MaxUploadBytes   int64
}

type handlers struct {
	posts            PostLister
	health           *health.Tracker
	placeholderCount int
	excerptLength    int
	maxUploadBytes   int64
}

// NewRouter builds the gin engine. The gin mode is set by the caller.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = post.DefaultExcerptLength
	}

	h := &handlers{
		posts:            cfg.Posts,
		health:           cfg.Health,
		placeholderCount: cfg.PlaceholderCount,
		excerptLength:    cfg.ExcerptLength,
		maxUploadBytes:   cfg.MaxUploadBytes,
	}

	r := gin.New()
	r.Use(requestLogger(), recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.tmpl")))

	r.GET("/", h.home)
	r.GET("/posts/grid", h.grid)

	form := r.Group("/create", sessionMiddleware(cfg.Sessions))
	form.GET("", h.createForm)
	form.POST("", h.submit)
	form.POST("/image", h.selectImage)

	r.GET("/healthz", h.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		switch c.FullPath() {
		case "/healthz", "/metrics":
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic in handler", "error", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// sessionMiddleware attaches the browser's workflow session, issuing a new
// cookie when the browser has none or an expired one.
func sessionMiddleware(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookie)
		id, s := reg.Get(cookie)
		if id != cookie {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}
