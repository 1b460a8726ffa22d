package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Logger   *zap.Logger
	Auth     AuthService
	Tokens   *TokenService
	Registry *Registry
	Events   RosterEventPublisher // optional
	Metrics  *MetricsService      // optional, reports roster queue depth
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, deps RouterDeps) *gin.Engine {
	startedAt := time.Now()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = NoopEventPublisher{}
	}
	registry := deps.Registry

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	r.Use(OriginMiddleware(cfg))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/static/index.html")
	})
	if fi, err := os.Stat(cfg.StaticDir); err == nil && fi.IsDir() {
		r.GET("/static/*filepath", serveStatic(http.Dir(cfg.StaticDir)))
		r.HEAD("/static/*filepath", serveStatic(http.Dir(cfg.StaticDir)))
	} else {
		logger.Warn("static directory not mounted", zap.String("dir", cfg.StaticDir))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, CollectSystemStatus(c.Request.Context(), registry, deps.Metrics, startedAt))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/token", func(c *gin.Context) {
		user, err := deps.Auth.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
		if err != nil {
			recordLogin(false)
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password")
			return
		}

		token, err := deps.Tokens.Issue(user.Username)
		if err != nil {
			logger.Error("issue token", zap.String("username", user.Username), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to issue token")
			return
		}
		recordLogin(true)
		c.JSON(http.StatusOK, gin.H{
			"access_token": token,
			"token_type":   "bearer",
			"username":     user.Username,
		})
	})

	r.GET("/activities", func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.List())
	})

	authed := r.Group("/")
	authed.Use(BearerAuth(deps.Tokens, deps.Auth))
	{
		authed.GET("/user/me", func(c *gin.Context) {
			user, _ := CurrentUser(c)
			c.JSON(http.StatusOK, user)
		})

		authed.POST("/activities/:name/signup", func(c *gin.Context) {
			name, email, ok := rosterParams(c)
			if !ok {
				return
			}
			err := registry.Enroll(name, email)
			recordRosterChange(RosterActionSignup, err)
			if err != nil {
				respondRosterError(c, err)
				return
			}
			user, _ := CurrentUser(c)
			publishRosterEvent(c.Request.Context(), logger, events, NewRosterEvent(RosterActionSignup, name, email, user.Username))
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Signed up %s for %s", email, name)})
		})

		authed.DELETE("/activities/:name/unregister", func(c *gin.Context) {
			name, email, ok := rosterParams(c)
			if !ok {
				return
			}
			err := registry.Unenroll(name, email)
			recordRosterChange(RosterActionUnregister, err)
			if err != nil {
				respondRosterError(c, err)
				return
			}
			user, _ := CurrentUser(c)
			publishRosterEvent(c.Request.Context(), logger, events, NewRosterEvent(RosterActionUnregister, name, email, user.Username))
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Unregistered %s from %s", email, name)})
		})
	}

	return r
}

// serveStatic answers from root without http.FileServer's canonical-path
// redirects, so /static/index.html is served directly. A directory serves its index.html.
func serveStatic(root http.FileSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, fi, err := openStatic(root, c.Param("filepath"))
		if err != nil {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "file not found")
			return
		}
		defer f.Close()
		http.ServeContent(c.Writer, c.Request, fi.Name(), fi.ModTime(), f)
	}
}

func openStatic(root http.FileSystem, name string) (http.File, fs.FileInfo, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !fi.IsDir() {
		return f, fi, nil
	}
	f.Close()
	if path.Base(name) == "index.html" {
		return nil, nil, fs.ErrNotExist
	}
	return openStatic(root, path.Join(name, "index.html"))
}

func rosterParams(c *gin.Context) (name, email string, ok bool) {
	name = c.Param("name")
	email, ok = c.GetQuery("email")
	if !ok || email == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "email query parameter is required")
		return "", "", false
	}
	return name, email, true
}

func respondRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Activity not found")
	case errors.Is(err, ErrAlreadyEnrolled):
		respondError(c, http.StatusBadRequest, "ALREADY_ENROLLED", "Student is already signed up")
	case errors.Is(err, ErrNotEnrolled):
		respondError(c, http.StatusBadRequest, "NOT_ENROLLED", "Student is not signed up for this activity")
	case errors.Is(err, ErrActivityFull):
		respondError(c, http.StatusBadRequest, "ACTIVITY_FULL", "Activity is full")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "roster update failed")
	}
}
