// Package vector provides a per-user, disk-persisted nearest-neighbor store.
//
// Architecture:
//   - Index: one user namespace's nearest-neighbor index (default: flat
//     cosine-distance scan persisted as JSON lines; chromem subpackage
//     offers an embedded-database alternative)
//   - Store: resolves user ids to lazily created namespaces, serializes
//     writes per namespace, and exposes AddVectors / SearchVectors /
//     DeleteVectors
//   - SemanticSearch: query-text search with score normalization and
//     filtering on top of Store
//
// Isolation model: every record lives in exactly one namespace keyed by
// user id. A namespace persists under a deterministic directory derived
// from the user id and is reloaded on restart. Operations without a user id
// fail fast; nothing ever defaults to a shared namespace.
//
// Persistence is write-through: every successful mutation is durable on
// disk before the call returns.
package vector
