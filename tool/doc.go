// Package tool exposes the guideline store as an agent-callable tool: a
// name, a description, and an Invoke that takes loosely typed arguments and
// returns the matched guideline text as a single string.
package tool
