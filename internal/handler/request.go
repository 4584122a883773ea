package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/sakif/exercise-tracker/internal/apperror"
)

// maxBodyBytes caps request bodies; exercise requests are a handful of fields.
const maxBodyBytes = 1 << 20

// readValues returns the fields of a POST body as url.Values, accepting
// either a JSON object or an HTML form encoding. JSON numbers and booleans
// are kept in their literal text form ("30", "true") so the service can
// coerce them the same way it coerces form values.
func readValues(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return readJSONValues(r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid form body")
	}
	return r.Form, nil
}

func readJSONValues(r *http.Request) (url.Values, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperror.ValidationFailed("body", "request body too large")
		}
		return nil, apperror.ValidationFailed("body", "invalid JSON body")
	}

	values := make(url.Values, len(body))
	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
			// null is the same as an absent field
		case string:
			values.Set(key, v)
		case json.Number:
			values.Set(key, v.String())
		case bool:
			values.Set(key, fmt.Sprint(v))
		default:
			return nil, apperror.ValidationFailed(key, fmt.Sprintf("%s must be a string or number", key))
		}
	}
	return values, nil
}
