// Package textutil provides small text helpers shared by the parsers and
// renderers.
//
// The primary use cases are:
//   - Cleaning operator note text so each note renders as one line
//   - Turning free-form labels into stable lowercase tokens
package textutil
