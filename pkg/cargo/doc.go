// Package cargo implements the dependency-resolution core of forkdep: it
// locates a Cargo workspace, loads (or generates) its lock graph, resolves a
// named dependency to its upstream repository URL, and rewrites the
// manifest's patch table.
//
// # Model
//
// A [Workspace] is the set of member packages built together from one root
// Cargo.toml. The [Lockfile] is the resolved dependency graph: one
// [Package] node per (name, version, source) triple, each listing the
// identifiers of its direct dependencies. Multiple versions of the same name
// may coexist as distinct nodes.
//
// Repository resolution ([ResolveRepository]) walks workspace members'
// direct lock edges only; transitive-only occurrences of a name are
// deliberately not resolved. Metadata is materialized one package at a time
// through a [MetadataSource], so resolving one dependency never fetches the
// whole graph.
//
// Manifest patching ([ApplyPatch]) edits a format-preserving document tree
// and never touches storage; [WriteManifest] persists the result atomically.
package cargo
