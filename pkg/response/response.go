package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Bare writes body without the envelope. Mobile clients of the account
// endpoints expect the payload at the top level.
func Bare(c *gin.Context, status int, body interface{}) {
	noStore(c)
	c.JSON(status, body)
}

// BareError writes err the way the account endpoints report failures: a JSON
// string for unsupported roles, the field mapping for validation failures and
// {"detail": message} for everything else.
func BareError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	switch {
	case appErr.Code == appErrors.ErrUnsupportedRole.Code:
		c.JSON(appErr.Status, appErr.Message)
	case len(appErr.Details) > 0:
		c.JSON(appErr.Status, appErr.Details)
	default:
		c.JSON(appErr.Status, gin.H{"detail": appErr.Message})
	}
}

// File streams a generated document as an attachment.
func File(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
