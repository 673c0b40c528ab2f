package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbooking/internal/app/auth"
	domainuser "hotelbooking/internal/domain/user"
)

// Identity headers are set by the gateway after it has verified the caller.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// AuthMiddleware attaches the gateway identity to the request context.
// Requests without an identity continue anonymously; handlers decide.
type AuthMiddleware struct {
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if userID == "" {
		c.Next()
		return
	}
	role, err := domainuser.ParseRole(c.GetHeader(HeaderUserRole))
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("identity rejected", "user_id", userID, "error", err)
		}
		c.Next()
		return
	}
	actor := auth.Actor{
		UserID: userID,
		Role:   role,
		Email:  strings.TrimSpace(c.GetHeader(HeaderUserEmail)),
		Name:   strings.TrimSpace(c.GetHeader(HeaderUserName)),
	}
	c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
	c.Next()
}
