package core

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// BearerAuth validates the Authorization header and resolves the token subject
// through the directory. The resolved User is stored on the gin context.
func BearerAuth(tokens *TokenService, authService AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := tokens.Validate(bearerToken(c.GetHeader("Authorization")))
		if err == nil {
			var user User
			if user, err = authService.Lookup(c.Request.Context(), username); err == nil {
				c.Set(currentUserKey, user)
				c.Next()
				return
			}
		}
		tokenRejections.Inc()
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		c.Abort()
	}
}

// CurrentUser returns the teacher stored by BearerAuth.
func CurrentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// OriginMiddleware applies CORS for the configured origins. With no origins
// configured the API is same-origin only and the middleware is a pass-through.
func OriginMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil && u.Host != "" {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}
		if origin == "" {
			c.Next()
			return
		}
		if _, ok := allowed[strings.ToLower(origin)]; !ok {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
			c.Abort()
			return
		}

		setCORSHeaders(c, origin)
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string) {
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
	c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
}
