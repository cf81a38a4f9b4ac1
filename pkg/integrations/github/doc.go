// Package github provides a client for the GitHub REST API and OAuth flows.
//
// forkdep uses GitHub for exactly one write operation: creating a fork of a
// dependency's upstream repository. The client also fetches the
// authenticated user (for auth whoami) and repository details (to learn the
// fork's clone URL and default branch).
//
// # Authentication
//
// Two OAuth flows are supported:
//   - Device flow (default): the user enters a short code at
//     github.com/login/device. No callback server or client secret needed.
//   - Authorization-code flow (--web): a localhost callback server receives
//     the redirect; see internal/cli.
//
// Tokens are persisted through pkg/session.
package github
