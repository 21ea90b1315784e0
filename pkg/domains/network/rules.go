package network

import (
	"fmt"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/guard"
)

// Server errors are bucketed by an inclusive range test.
const (
	serverErrorMin = 500
	serverErrorMax = 599
)

// NewTable builds the network response table.
func NewTable() (*guard.Table[Response], error) {
	return guard.NewTable(domains.Network, Shapes(), rules()...)
}

func rules() []guard.Rule[Response] {
	return []guard.Rule[Response]{
		guard.Case[Response]("network.success.ok",
			func(s Success) bool { return s.StatusCode == 200 },
			guard.OutcomeSuccess,
			func(s Success) string { return "✅ Success: " + s.Data }),
		guard.Case[Response]("network.success.created",
			func(s Success) bool { return s.StatusCode == 201 },
			guard.OutcomeSuccess,
			func(s Success) string { return "✅ Created: " + s.Data }),
		guard.Case[Response]("network.success.accepted",
			func(s Success) bool { return s.StatusCode == 202 },
			guard.OutcomeSuccess,
			func(s Success) string { return "✅ Accepted: " + s.Data }),
		guard.Case[Response]("network.success.other", nil,
			guard.OutcomeSuccess,
			func(s Success) string { return fmt.Sprintf("✅ Success (%d): %s", s.StatusCode, s.Data) }),

		guard.Case[Response]("network.error.bad_request",
			statusIs(400),
			guard.OutcomeError,
			func(e Error) string { return "❌ Bad Request: " + e.Message }),
		guard.Case[Response]("network.error.unauthorized",
			statusIs(401),
			guard.OutcomeError,
			func(e Error) string { return "🔒 Unauthorized: " + e.Message }),
		guard.Case[Response]("network.error.forbidden",
			statusIs(403),
			guard.OutcomeError,
			func(e Error) string { return "🚫 Forbidden: " + e.Message }),
		guard.Case[Response]("network.error.not_found",
			statusIs(404),
			guard.OutcomeError,
			func(e Error) string { return "🔍 Not Found: " + e.Message }),
		guard.Case[Response]("network.error.rate_limited",
			statusIs(429),
			guard.OutcomeWarning,
			func(e Error) string { return "⏰ Rate Limited: " + e.Message }),
		guard.Case[Response]("network.error.server",
			func(e Error) bool { return e.StatusCode >= serverErrorMin && e.StatusCode <= serverErrorMax },
			guard.OutcomeError,
			func(e Error) string { return fmt.Sprintf("🔥 Server Error (%d): %s", e.StatusCode, e.Message) }),
		guard.Case[Response]("network.error.other", nil,
			guard.OutcomeError,
			func(e Error) string { return fmt.Sprintf("❌ Error (%d): %s", e.StatusCode, e.Message) }),

		guard.Case[Response]("network.loading", nil,
			guard.OutcomePending,
			guard.Message[Loading]("⏳ Loading...")),
		guard.Case[Response]("network.timeout", nil,
			guard.OutcomeError,
			guard.Message[Timeout]("⏱️ Request timed out")),
	}
}

func statusIs(code int) func(Error) bool {
	return func(e Error) bool { return e.StatusCode == code }
}

// Samples returns the demonstration responses in presentation order.
func Samples() []Response {
	return []Response{
		NewSuccess("User profile data"),
		Success{Data: "Resource created", StatusCode: 201},
		Error{Message: "Missing required fields", StatusCode: 400},
		Error{Message: "Invalid credentials", StatusCode: 401},
		Error{Message: "Access denied", StatusCode: 403},
		Error{Message: "User not found", StatusCode: 404},
		Error{Message: "Too many requests", StatusCode: 429},
		Error{Message: "Internal server error", StatusCode: 500},
		Loading{},
		Timeout{},
	}
}
