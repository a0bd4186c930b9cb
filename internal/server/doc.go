// Package server exposes a registry over a JSON HTTP API built on fiber.
//
// Mutating routes require a Bearer token issued by auth.Tokens; the token's
// subject becomes the caller the registry authorizes against. Read routes
// are public.
package server
