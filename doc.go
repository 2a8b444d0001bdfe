// Package rentroll reconstructs the rent roll of a commercial real estate portfolio on
// an as-of date from a versioned log of lease amendments and their charge schedules.
//
// The core functionalities include:
//   - Resolution: selecting, for every lease key, the one authoritative amendment on the
//     as-of date (Resolve), preferring the highest sequence that has rent charges.
//   - Aggregation: summing the rent charges of that amendment into monthly and annual
//     rent and rent per square foot (Aggregate).
//   - Snapshot: rolling leases up by property and portfolio, with occupancy, WALT and
//     lease expiration buckets (Build, Summarize), and comparing two snapshots (Compare).
//   - Quality: scoring the internal consistency of the amendment log (Score).
//   - Validation: comparing a snapshot with an independently sourced rent roll and
//     detecting when both describe different populations (Validate).
//   - Data Persistence: reading JSONL amendment, charge and property logs (LoadBook)
//     and writing snapshots as JSON or CSV.
//
// The as-of date is always an explicit parameter: nothing in this package reads the
// clock. Run ties the stages together over a Book with a bounded worker pool.
//
// This package serves as the foundational logic for the `rentroll` command-line tool.
package rentroll
