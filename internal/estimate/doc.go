// Package estimate turns wave staffing and logistics data into man-months,
// cost to company, logistics cost and selling price, aggregated per resource,
// per wave and per project, and compares two project summaries.
//
// Every function in this package is pure: inputs are read, never modified,
// and malformed but representable numbers are clamped rather than rejected.
// Conditions the caller should surface (an unusable profit margin, clamped
// input) are reported as Warnings on the result.
package estimate
