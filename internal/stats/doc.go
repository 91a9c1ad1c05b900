// Package stats derives cadence metrics from a repository's daily commit
// window: longest gap, longest streak, regularity, and per-window story
// summaries.
//
// Every function expects a dense window: one DailyCommitRecord per calendar
// day, ascending and unique, with zero-commit days present. Inputs that break
// that contract are rejected with an INVALID_INPUT AppError instead of
// producing a wrong statistic. Nothing here performs I/O or holds state, so
// callers may run computations for different repositories concurrently.
package stats
