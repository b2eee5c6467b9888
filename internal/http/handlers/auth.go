package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	session, err := a.auth(c).Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	// The token stays server-side; the page only needs identity.
	c.JSON(http.StatusOK, gin.H{
		"username": session.Username,
		"siteUrl":  session.SiteURL,
	})
}

// GET /api/auth/session
func (a *API) Session(c *gin.Context) {
	session, ok, err := a.auth(c).Restore(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      session.Username,
		"siteUrl":       session.SiteURL,
	})
}

// POST /api/auth/logout
func (a *API) Logout(c *gin.Context) {
	if err := a.auth(c).Logout(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
