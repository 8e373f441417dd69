package http

type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
)

func parseMethod(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	}
	return MethodUnknown
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	}
	return "UNKNOWN"
}

type Field struct{ Name, Value string }

func (f Field) String() string { return f.Name + ": " + f.Value }

// Request is a fully received HTTP request.
// All of its fields are copied out of the connection buffer,
// so it stays valid after the buffer is reused for the response.
type Request struct {
	Method  Method
	Path    string
	Version string
	Headers []Field

	// Body is nil for GET requests.
	Body []byte
}

// Header returns the value of the first header named exactly name.
func (r *Request) Header(name string) (value string, ok bool) {
	for _, f := range r.Headers {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Response is immutable once built, and is serialized exactly once.
type Response struct {
	Version string
	Status  uint16
	Headers []Field
	Body    string
}

func NewResponse(version string, status uint16, headers []Field, body string) Response {
	return Response{
		Version: version,
		Status:  status,
		Headers: headers,
		Body:    body,
	}
}

func (r Response) StatusText() string { return StatusText(r.Status) }

func (r Response) String() string { return string(r.AppendTo(nil)) }
