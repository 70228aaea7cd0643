package errors

import (
	"net/http"
)

func BadRequest() ErrorEnricher  { return WithCode(http.StatusBadRequest) }
func NotFound() ErrorEnricher    { return WithCode(http.StatusNotFound) }
func BadGateway() ErrorEnricher  { return WithCode(http.StatusBadGateway) }
func Unavailable() ErrorEnricher { return WithCode(http.StatusServiceUnavailable) }
