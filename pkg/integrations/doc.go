// Package integrations provides shared HTTP client functionality for the
// registry and hosting API clients (crates.io, GitHub).
//
// The base [Client] layers three concerns on top of net/http:
//   - response caching through a pkg/cache backend with per-client namespacing
//   - retry with exponential backoff for transient failures
//   - default request headers (User-Agent, Accept, Authorization)
//
// Concrete clients embed *Client and add endpoint-specific methods; see the
// crates and github subpackages.
package integrations
