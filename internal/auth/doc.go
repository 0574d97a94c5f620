// Package auth provides authentication and authorisation for Lumenweave Core.
//
// It implements a 3-tier role model (viewer → operator → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens signed with HS256
//   - Static role-permission mapping (compile-time, no database lookup)
//
// Viewers can read the template catalogue and compiled output. Operators
// can additionally edit templates and trigger compiles. Admins manage
// user accounts on top of that. The first boot seeds an admin account
// with a random password that must be changed immediately.
package auth
