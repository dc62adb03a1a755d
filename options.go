package streamdecode

import "github.com/hashicorp/go-hclog"

// MaxDepth is the maximum depth of the semantic frame stack (spec.md §6
// "Limits"). There is no separate FSM call stack to bound: the lexical
// position is kept in a single expectState (see fsm.go).
const MaxDepth = 64

// Options is the closed set of configuration knobs spec.md §6 names.
type Options struct {
	// IgnoreJSONUnknown, when true, silently skips unknown member names
	// (and their entire value subtree) instead of halting with
	// UnknownField (spec.md §4.9, §7).
	IgnoreJSONUnknown bool

	// Logger receives Trace/Debug diagnostics about frame and well-known-
	// type transitions. Defaults to a null logger. Never used for errors:
	// those flow through the error-reporting collaborator (Driver.Status).
	Logger hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}
