// Package sanitizer normalises user supplied text before it is validated and
// stored. Transforms are plain func(string) string values and can be chained
// with Apply or stored as a pipeline with Compose.
package sanitizer
