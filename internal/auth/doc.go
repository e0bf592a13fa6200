// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package auth provides authentication and password reset for Folio.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewUser - creates a User with validated username and email and an empty Profile
//   - NewWebSession - creates a WebSession with validated user and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
//
// # Services
//
//   - CredentialStore - user creation, password verification and overwrite
//   - TokenService - stateless signed reset tokens (mint / verify)
//   - Service - login, per-request session resolution, logout
//   - PasswordResetService - request, follow link, complete
//   - ProfileService - profile edits with optional avatar upload
//
// Errors are oops-coded and wrap the package sentinels (ErrNotFound,
// ErrConflict, ErrInvalidCredentials, ErrInvalidOrExpiredToken,
// ErrNotAuthenticated), so callers classify with errors.Is. Malformed input is
// reported as a *ValidationError keyed by form field.
package auth
