// Package auth establishes who is calling the registry.
//
// A transport authenticates the caller (a verified bearer token over HTTP,
// the --as flag on the local CLI) and records the identity in the request
// context with WithCaller. Context then answers the registry's RequireAuth
// checks from that context.
package auth
