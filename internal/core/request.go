// AngelaMos | 2026
// request.go

package core

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// ReadJSONBody reads exactly Content-Length bytes and decodes them as a JSON
// object. A missing, oversized or undecodable body yields nil.
func ReadJSONBody(r *http.Request) map[string]any {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxBodyBytes {
		return nil
	}

	buf := make([]byte, r.ContentLength)
	if _, err := io.ReadFull(r.Body, buf); err != nil {
		return nil
	}

	var body map[string]any
	if err := json.Unmarshal(buf, &body); err != nil {
		return nil
	}

	return body
}

// Bind copies a decoded body into a typed request struct.
func Bind(body map[string]any, dst any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func QueryParam(r *http.Request, name, defaultVal string) string {
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return defaultVal
	}
	return values[0]
}

func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
