// Package project2vec builds a vector space of projects over the aggregated
// keyword vocabulary.
//
// Every project becomes a binary vector: component i is set when keyword i
// of the sorted vocabulary appears in the project's description or README.
// Vectors are computed by independent siblings and assembled into a space
// sorted by project name, persisted as a metadata table plus a matrix.
package project2vec
