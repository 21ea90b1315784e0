// Package network classifies network responses by case and status code.
package network

import "mercator-hq/guard/pkg/guard"

// Shapes of the Response variant set.
const (
	ShapeSuccess guard.Shape = "success"
	ShapeError   guard.Shape = "error"
	ShapeLoading guard.Shape = "loading"
	ShapeTimeout guard.Shape = "timeout"
)

// Shapes returns every case of Response. A new case must be added here and
// given a catch-all rule, or table construction fails.
func Shapes() []guard.Shape {
	return []guard.Shape{ShapeSuccess, ShapeError, ShapeLoading, ShapeTimeout}
}

// Response is the closed set of network responses.
type Response interface {
	guard.Variant
	isResponse()
}

// Success is a completed response carrying data.
type Success struct {
	Data       string `json:"data"`
	StatusCode int    `json:"status_code"`
}

// NewSuccess returns a Success with the conventional 200 status code.
func NewSuccess(data string) Success {
	return Success{Data: data, StatusCode: 200}
}

// Error is a failed response.
type Error struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// Loading means the response has not arrived yet.
type Loading struct{}

// Timeout means the request timed out.
type Timeout struct{}

func (Success) Shape() guard.Shape { return ShapeSuccess }
func (Error) Shape() guard.Shape   { return ShapeError }
func (Loading) Shape() guard.Shape { return ShapeLoading }
func (Timeout) Shape() guard.Shape { return ShapeTimeout }

func (Success) isResponse() {}
func (Error) isResponse()   {}
func (Loading) isResponse() {}
func (Timeout) isResponse() {}
