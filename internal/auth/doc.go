// Package auth implements account management and session authentication
// for the storefront.
//
// Accounts are local email/password records; a profile row is created at
// registration time. Sessions are cookie-based (scs with a SQLite store)
// and the login route is rate limited per IP+identifier with a lockout
// after repeated failures.
//
// Sign-in is a precondition of checkout: the purchase endpoints sit behind
// RequireAuth rather than prompting for credentials mid-flow.
package auth
