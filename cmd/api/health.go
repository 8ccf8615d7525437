package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingResponse represents the response for the ping endpoint
type PingResponse struct {
	Message  string `json:"message" example:"pong"`                     // Response message
	Upstream string `json:"upstream" example:"https://api.weather.gov"` // Weather service the forecasts come from
}

// handlePing godoc
// @Summary Ping health check
// @Description Check if the API is running and report which weather service it forwards to
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /ping [get]
func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message:  "pong",
		Upstream: app.cfg.NWS.BaseURL,
	})
}
