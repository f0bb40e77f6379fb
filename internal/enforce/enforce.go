// Package enforce provides a single assertion helper used at the boundary
// between recoverable configuration problems and invariant violations that
// must abort the process immediately.
package enforce

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ENFORCE halts the process if query is a false bool, a non-nil error, or a
// non-empty string. A nil error passes silently, matching the common
// enforce.ENFORCE(err) call shape.
func ENFORCE(query interface{}, args ...interface{}) {
	switch t := query.(type) {
	case bool:
		if !t {
			log.Panic().Interface("args", args).Msg("enforce: condition failed")
		}
	case error:
		if t != nil {
			log.Panic().Err(t).Interface("args", args).Msg("enforce: error")
		}
	case string:
		if t != "" {
			log.Panic().Str("query", t).Interface("args", args).Msg("enforce: message")
		}
	case nil:
		// Allow nil to pass; common idiom is enforce.ENFORCE(err).
	default:
		log.Panic().Str("type", fmt.Sprintf("%T", t)).Interface("args", args).Msg("enforce: unrecognized usage")
	}
}
