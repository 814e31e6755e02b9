// Package auth authenticates and authorizes callers of the MCPP dispatcher.
//
// It supports bearer JWTs (optionally verified against a JWKS endpoint) and
// pre-shared API keys, singly or combined via CompositeAuthenticator, plus
// role-based access control (RBAC). The resulting Identity is attached to
// the request context so the dispatcher can derive UsageContext.Requester's
// host_id from it and gate mcpp/provide_consent behind the
// "consent:decide" permission. The package is protocol-agnostic and can be
// used with any transport layer.
package auth
