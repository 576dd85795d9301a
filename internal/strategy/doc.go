// Package strategy selects and runs the traversal strategy for a plan.
//
// The supported (root mode, folder mode) pairs are a closed set:
//
//	single / single     SingleFile
//	multi  / list       List
//	multi  / parenting  Parenting
//	multi  / recursive  Recursive
//
// Every other pair is rejected by SelectModes with an *UnsupportedError.
//
// A strategy first enumerates its work items and anomalies without touching
// any document, then Run hands the items to a pipeline.BatchProcessor and
// merges the outcomes back into enumeration order.
package strategy
