// Package delayed provides template based values, which are
// resolved against a workspace context only when they are read.
//
// Templates contain tokens of the form {NAME}. A Resolver
// (typically a Tokens table) replaces the tokens it knows and
// keeps all other tokens verbatim, so a template may be resolved
// in several stages. Values are never cached: every read
// re-resolves the template against the context passed by the caller.
package delayed
