// Package crates provides a client for the crates.io registry API.
//
// forkdep uses it to materialize the metadata of a single locked package,
// specifically the repository URL declared in the crate's manifest. Responses
// are cached through a pkg/cache backend so repeated resolutions of the same
// crate do not hit the network.
//
// crates.io requires a User-Agent header identifying the tool; the client
// sets one automatically.
package crates
