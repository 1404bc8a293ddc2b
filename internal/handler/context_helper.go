package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/caluny-api/internal/middleware"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func malformedBody(err error) error {
	return appErrors.Wrap(err, appErrors.ErrMalformedBody.Code, appErrors.ErrMalformedBody.Status, appErrors.ErrMalformedBody.Message)
}

// bindBody decodes a form body when the request is form encoded and a JSON
// object otherwise, whatever the Content-Type says. JSON scalars are read as
// text so a non-string value reaches field validation instead of failing the
// bind. An empty body leaves dst untouched.
func bindBody(c *gin.Context, dst interface{}) error {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		if err := c.ShouldBindWith(dst, binding.Form); err != nil {
			return malformedBody(err)
		}
		return nil
	}

	raw, err := c.GetRawData()
	if err != nil {
		return malformedBody(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return malformedBody(err)
	}

	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return malformedBody(err)
	}
	if err := json.Unmarshal(encoded, dst); err != nil {
		return malformedBody(err)
	}
	return nil
}

// bindJSON decodes a JSON body into dst.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return malformedBody(err)
	}
	return nil
}
