// Package pushout merges independently authored documents into one quotient
// graph.
//
// Build first forms the disjoint union of the documents: every blank node
// and every default graph is tagged with its document index, so nothing
// collides. It then groups typed blank-node subjects of each keyed shape by
// their key values and merges the groups with a union-find forest. Finally
// every blank node is rewritten to the canonical id of its class.
//
// Named-node subjects never merge. Key matching repeats until no further
// union happens, so a key whose value is itself a blank node compares
// through the partition computed so far; chains of merges across three or
// more documents converge.
package pushout
