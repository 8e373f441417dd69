package server

import "event-http/application/http"

// Handler turns a request into a response.
// It runs on the event loop, so it must not block.
type Handler interface {
	Serve(request *http.Request) http.Response
}

type HandlerFunc func(request *http.Request) http.Response

func (f HandlerFunc) Serve(request *http.Request) http.Response { return f(request) }

// badRequest is sent when the request could not be parsed.
var badRequest = http.NewResponse("HTTP/1.1", http.StatusBadRequest.Code, nil, "")
