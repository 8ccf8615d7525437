package main

import (
	"errors"
	"net/http"

	"medi-forecast/internal/forecast"
	"medi-forecast/internal/providers/nws"
	"medi-forecast/internal/types"

	"github.com/gin-gonic/gin"
)

// CoordsInput defines the query parameters shared by the forecast endpoints
type CoordsInput struct {
	Latitude  *float64 `form:"latitude" binding:"required"`  // Latitude in decimal degrees
	Longitude *float64 `form:"longitude" binding:"required"` // Longitude in decimal degrees
}

// coords range-checks the bound parameters, answering 400 when they are out of range
func (in CoordsInput) coords(c *gin.Context) (types.Coords, bool) {
	coords := types.NewCoords(*in.Latitude, *in.Longitude)
	if err := coords.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return types.Coords{}, false
	}
	return coords, true
}

// GetForecastInput adds the choice of forecast link to follow
type GetForecastInput struct {
	CoordsInput
	Field string `form:"field"` // forecastHourly, forecast or all
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error" example:"latitude must be between -90 and 90"`
}

// handleGetForecast godoc
// @Summary Get forecast for a coordinate
// @Description Resolve the NWS points resource for a coordinate and return the linked forecast document unchanged
// @Tags forecast
// @Produce json
// @Param latitude query number true "Latitude in decimal degrees" minimum(-90) maximum(90) example(37.8)
// @Param longitude query number true "Longitude in decimal degrees" minimum(-180) maximum(180) example(-122.47)
// @Param field query string false "Forecast link to follow, all returns the bundle" Enums(forecastHourly, forecast, all)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /forecast [get]
func (app *App) handleGetForecast(c *gin.Context) {
	var input GetForecastInput

	// Bind and validate query parameters
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	coords, ok := input.coords(c)
	if !ok {
		return
	}
	field := input.Field
	if field == "" {
		field = app.cfg.Forecast.Field
	}

	// Delegate to business layer
	doc, err := app.forecastService.GetForecast(c.Request.Context(), coords, field)
	if err != nil {
		app.writeError(c, "failed to get forecast", coords, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Bytes())
}

// handleGetPoint godoc
// @Summary Get the NWS points resource for a coordinate
// @Description Return the points document, which links to the forecast resources for the location
// @Tags forecast
// @Produce json
// @Param latitude query number true "Latitude in decimal degrees" minimum(-90) maximum(90) example(37.8)
// @Param longitude query number true "Longitude in decimal degrees" minimum(-180) maximum(180) example(-122.47)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /forecast/point [get]
func (app *App) handleGetPoint(c *gin.Context) {
	var input CoordsInput

	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	coords, ok := input.coords(c)
	if !ok {
		return
	}

	doc, err := app.forecastService.GetPoint(c.Request.Context(), coords)
	if err != nil {
		app.writeError(c, "failed to get point", coords, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Bytes())
}

// handleGetBundle godoc
// @Summary Get station and both forecasts for a coordinate
// @Description Resolve the NWS points resource once and return it together with the forecast and hourly forecast it links to
// @Tags forecast
// @Produce json
// @Param latitude query number true "Latitude in decimal degrees" minimum(-90) maximum(90) example(37.8)
// @Param longitude query number true "Longitude in decimal degrees" minimum(-180) maximum(180) example(-122.47)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /forecast/bundle [get]
func (app *App) handleGetBundle(c *gin.Context) {
	var input CoordsInput

	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	coords, ok := input.coords(c)
	if !ok {
		return
	}

	doc, err := app.forecastService.GetBundle(c.Request.Context(), coords)
	if err != nil {
		app.writeError(c, "failed to get forecast bundle", coords, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Bytes())
}

// writeError maps service errors to status codes
func (app *App) writeError(c *gin.Context, msg string, coords types.Coords, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidLatitude),
		errors.Is(err, types.ErrInvalidLongitude),
		errors.Is(err, forecast.ErrUnsupportedField):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case nws.IsIOError(err):
		app.logger.Warn(msg,
			"coords", coords.String(),
			"request_id", c.GetString(requestIDKey),
			"error", err,
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: msg + ": upstream unavailable"})
		return
	}

	// Other errors are internal server errors
	app.logger.Error(msg,
		"coords", coords.String(),
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}
