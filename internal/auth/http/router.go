package http

import "github.com/gin-gonic/gin"

// Register mounts the auth routes. loginLimit throttles the credential
// endpoints; bearer must resolve the session for the rest.
func (h *Handler) Register(rg *gin.RouterGroup, loginLimit, bearer gin.HandlerFunc) {
	rg.POST("/login", loginLimit, h.Login)
	rg.POST("/register", loginLimit, h.SignUp)

	authed := rg.Group("", bearer)
	authed.GET("/me", h.Me)
	authed.POST("/logout", h.Logout)
	authed.PATCH("/session", h.UpdateSession)
}
