package books

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Payload is the request body accepted by create and update.
type Payload struct {
	Name      string `json:"name"`
	Year      int    `json:"year"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	PageCount int    `json:"pageCount"`
	ReadPage  int    `json:"readPage"`
	Reading   bool   `json:"reading"`
}

const (
	addFailed    = "failed to add book"
	updateFailed = "failed to update book"
)

// validate returns the failure message for an invalid payload, or "" when
// the payload is acceptable. Checks run in a fixed order: name first, then
// page counts.
func (p Payload) validate(prefix string) string {
	if p.Name == "" {
		return prefix + ": name required"
	}
	if p.PageCount < 0 || p.ReadPage < 0 {
		return prefix + ": pageCount and readPage cannot be negative"
	}
	if p.ReadPage > p.PageCount {
		return prefix + ": readPage cannot exceed pageCount"
	}
	return ""
}

// bindPayload decodes the JSON request body into p, rejecting unknown fields
// and trailing data.
func bindPayload(c *gin.Context, p *Payload) error {
	if c.Request == nil || c.Request.Body == nil {
		return errors.New("empty request body")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return errors.Wrap(err, "invalid json body")
	}
	if dec.More() {
		return errors.New("unexpected data after json body")
	}
	return nil
}

// queryFlag maps a reading/finished query value to the boolean it filters on:
// "1" means true, any other value means false.
func queryFlag(value string) bool {
	return value == "1"
}
