// Package status holds the subset of HTTP status codes this server
// emits, plus the error type protocol violations are reported with.
package status

import "strconv"

type Status struct {
	Code   int
	Reason string
}

var (
	OK = add(Status{200, "OK"})

	BadRequest       = add(Status{400, "Bad Request"})
	NotFound         = add(Status{404, "Not Found"})
	MethodNotAllowed = add(Status{405, "Method Not Allowed"})
	RequestTimeout   = add(Status{408, "Request Timeout"})
	LengthRequired   = add(Status{411, "Length Required"})
	ContentTooLarge  = add(Status{413, "Content Too Large"})

	InternalServerError     = add(Status{500, "Internal Server Error"})
	HTTPVersionNotSupported = add(Status{505, "HTTP Version Not Supported"})
)

var table = make(map[int]Status)

func add(s Status) Status {
	table[s.Code] = s
	return s
}

// FromCode returns the known status for code, or one with the reason
// "Unknown" when the code is not in the table.
func FromCode(code int) Status {
	if s, ok := table[code]; ok {
		return s
	}
	return Status{Code: code, Reason: "Unknown"}
}

func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.Reason
}
