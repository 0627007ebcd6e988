// Package identity provides the deterministic UUID namespace used to
// document how generated worker message IDs and record identities relate
// to their source entity, mirroring the teacher's own namespace-UUID
// convention for module identity.
package identity

// NamespaceUUID is the UUID v5 namespace nomnomgen documents for
// generated record identity computation: uuid.SHA1(uuid.NameSpaceDNS,
// "nomnomgen.dev"). The compiler itself never computes UUIDs — that is
// left to the generated Rust worker, which uses it as a stable seed for
// deriving synthetic IDs from unicity-field tuples where the source data
// has none.
const NamespaceUUID = "8367a606-47bb-5bb6-9b65-374b1839b6af"
