package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam returns the named path parameter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetParamInt64 parses the named path parameter as a positive integer.
func (r *Request) GetParamInt64(key string) (int64, error) {
	v, err := strconv.ParseInt(r.GetParam(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, goerror.NewInvalidFormat("Invalid path parameter " + key)
	}
	return v, nil
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeBody decodes a single JSON object into dst, rejecting unknown fields.
func (r *Request) DecodeBody(dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}
	return decode(r.Body, dst, false)
}

// DecodeOptionalBody is DecodeBody that treats an empty body as "{}".
func (r *Request) DecodeOptionalBody(dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	return decode(r.Body, dst, true)
}

func decode(body io.Reader, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}
