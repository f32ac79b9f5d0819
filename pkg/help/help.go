// Package help provides the built-in reference text for the s0 CLI.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/s0lang/s0/pkg/stdlib"
)

// QUICKREF is the summary printed by `s0 help` with no arguments.
const QUICKREF = `s0 quick reference (v0.1)

A program is a forest: zero or more whitespace-separated S-expression
forms. Atoms are numbers (float64 literals) or symbols; an atom that
does not parse in full as a number is a symbol.

  (define name expr)       bind name in the current scope; yields no value
  (lambda (params) body)   make a procedure closing over the defining scope
  (op arg ...)             apply: operator and arguments evaluate left to
                           right, then the call dispatches

Native procedures and constants live in the root scope: * multiplies
exactly two numbers, pi is the circle constant.

Topics (s0 help <topic>):
  syntax   forms, atoms and parsing
  values   numbers, natives and procedures
  scopes   lexical scoping and the scope store
  errors   diagnostic codes and failure modes
  repl     interactive session commands

s0 help natives lists the registered natives and root constants.

Commands: run, check, fmt, repl, trace, help, version
`

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "values", "scopes", "errors", "repl"}

// Topics maps topic names to their reference text.
var Topics = map[string]string{
	"syntax": `Syntax

Source text is a forest of S-expression forms.

  tokens    '(' and ')' plus whitespace-delimited atoms
  numbers   atoms that parse in full as float64: 10, 3.14, 1e-2
  symbols   every other atom: r, *, define, 10abc
  forms     '(' ... ')' sequences; the first child is the operator
            or keyword position

There are no comments, strings or quote forms. Unbalanced
parentheses are the only parse error.
`,

	"values": `Values

  number      IEEE-754 double. Whole numbers print without a
              decimal point.
  native      a named entry in the host dispatch table: #<native *>
  procedure   a closure made by lambda, holding parameter names, a
              body and the captured scope: #<procedure (a b)>

define is the one form that produces no value. A program's output is
the value stream of its top-level forms.
`,

	"scopes": `Scopes

Scopes live in an arena keyed by stable ids and link to their parent
by id. A lambda captures the scope it was created in; applying the
procedure makes a fresh scope whose parent is that captured scope,
never the caller's. Symbol lookup walks from the current scope toward
the root and takes the nearest binding.

Scopes are never collected: a closure keeps its defining scope alive
for the life of the session.
`,

	"errors": `Diagnostics

Parse:
  E_UNBALANCED       unbalanced parentheses (either direction)

Runtime:
  E_UNBOUND          symbol has no binding in any enclosing scope
  E_NOT_CALLABLE     operator evaluated to something that cannot be applied
  E_NATIVE_ARITY     native called with the wrong argument count
  E_NATIVE_TYPE      native called with a non-number argument
  E_UNKNOWN_NATIVE   native binding missing from the dispatch table
  E_MALFORMED_FORM   define/lambda shape violation or empty form
  E_NO_VALUE         a define used where a value is required
  E_BAD_SCOPE        scope id unknown to the store
  E_NATIVE           untyped error from a native procedure

Check only:
  E_DUP_PARAM        duplicate lambda parameter

run exits 2 on parse errors and 3 on runtime errors.
`,

	"repl": `REPL

s0 repl reads forms interactively. Input continues on '... ' lines
until the parentheses balance. Forms evaluate in one persistent
session, so defines accumulate.

  :help    show the quick reference
  :reset   discard the session and start fresh
  :quit    exit (also :q or Ctrl-D)

History is kept in $HOME/.s0_history.
`,
}

// MatchTopic resolves a topic query by exact match, then by unique prefix.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown topic %q (try: %s)", query, strings.Join(TopicList, ", "))
	default:
		return "", "", fmt.Errorf("ambiguous topic %q matches: %s", query, strings.Join(matches, ", "))
	}
}

// NativeIndex renders the default native procedures and root constants.
func NativeIndex() string {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	consts := stdlib.Constants()

	constNames := make([]string, 0, len(consts))
	for name := range consts {
		constNames = append(constNames, name)
	}
	sort.Strings(constNames)

	var b strings.Builder
	b.WriteString("Native procedures:\n")
	for _, name := range reg.Names() {
		b.WriteString("  " + name + "\n")
	}
	b.WriteString("Root constants:\n")
	for _, name := range constNames {
		b.WriteString("  " + name + "\n")
	}
	fmt.Fprintf(&b, "Total: %d root bindings\n", len(reg.All())+len(consts))
	return b.String()
}
