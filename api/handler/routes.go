package handler

import "github.com/labstack/echo/v4"

// Routes registers the video endpoints on e. uploadMW wraps only the upload
// route.
func (h *Handler) Routes(e *echo.Echo, uploadMW ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	e.GET("/videos", h.GetVideos)
	e.GET("/videos/:id", h.GetVideo)
	e.DELETE("/videos/:id", h.DeleteVideo)
	e.POST("/upload-video", h.Upload, uploadMW...)
}
