package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rooted-backend/internal/usecase"
)

// envelope is the shape of every response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// rejected is a business-level refusal: the request was well formed and
// handled, the answer is no. It stays HTTP 200.
func (s *Server) rejected(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: false, Message: message})
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), envelope{Success: false, Message: err.Error()})
}

func statusOf(err error) int {
	switch err.(type) {
	case usecase.ErrBadRequest:
		return http.StatusBadRequest
	case usecase.ErrUnauthorized:
		return http.StatusUnauthorized
	case usecase.ErrForbidden:
		return http.StatusForbidden
	case usecase.ErrNotFound:
		return http.StatusNotFound
	case usecase.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// businessReject reports whether the error is a rejection the caller
// should see as a success:false envelope rather than an HTTP error.
func businessReject(err error) bool {
	_, ok := err.(usecase.ErrBadRequest)
	return ok
}
