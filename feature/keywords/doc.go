// Package keywords builds the aggregated keyword table project2vec takes its
// vocabulary from.
//
// Keywords are counted per project (a fan-out group reduced with
// fanin.MergeCounts) or over every stored document of a source, then the
// tables of several sources are combined by summing counts. The result is
// stored under a single fixed key, replacing the previous table.
package keywords
