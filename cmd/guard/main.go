// Guard is an ordered guard-rule decision engine.
//
// It classifies network responses, user-management requests, file
// operations, database queries and orders into exactly one decision by
// evaluating an ordered rule table per domain. The first matching rule wins.
//
// Usage:
//
//	# Decide a single input
//	guard decide file write --name ../../etc/passwd --size 100 --content x
//
//	# Show every rule considered
//	guard decide order --id 1 --customer c1 --amount 15000 --items laptop --explain
//
//	# Stream NDJSON inputs and print one decision per line
//	guard run --input inputs.ndjson --format json
//
//	# Replay the demonstration inputs of all five domains
//	guard demo
//
//	# List the ordered rules of a domain
//	guard rules dbquery
//
//	# Inspect the decision audit trail
//	guard audit query --outcome error --limit 20
package main

func main() {
	Execute()
}
