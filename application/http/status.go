package http

type Status struct {
	Code         uint16
	ReasonPhrase string
}

// Only the statuses this server produces carry a reason phrase.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15
var (
	StatusOK             = add(Status{200, "OK"})
	StatusBadRequest     = add(Status{400, "Bad Request"})
	StatusNotFound       = add(Status{404, "Not Found"})
	StatusNotImplemented = add(Status{501, "Not Implemented"})
)

var sm = make(map[uint16]Status)

func add(status Status) Status {
	sm[status.Code] = status
	return status
}

// StatusText returns the reason phrase for code, or an empty string if it is unknown.
func StatusText(code uint16) string {
	return sm[code].ReasonPhrase
}
