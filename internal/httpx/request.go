package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON decodes the request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}
	return err
}

// JSONDecodeError writes the client error matching a DecodeJSON failure.
func JSONDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		JSONError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge.Error())
		return
	}
	JSONError(w, http.StatusBadRequest, "Invalid request body")
}
