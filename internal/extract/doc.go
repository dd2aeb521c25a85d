// Package extract recovers a single candidate record from a loosely shaped
// spreadsheet.
//
// The package is pure: it performs no I/O beyond reading the byte buffer it is
// handed, keeps no mutable state between calls, and never logs. The HTTP
// upload path, the preview endpoint and the talentctl command all run the same
// [Engine], so a workbook that extracts cleanly in one place extracts to the
// identical [Record] everywhere.
//
// # Pipeline
//
//  1. [Decode] turns workbook bytes into a [Grid] of typed [Cell] values taken
//     from the first sheet. Blank rows are dropped and rows are padded to a
//     rectangle.
//  2. [Engine.Classify] decides whether row 0 is a header ([HeaderPresent]) or the
//     sole data row ([HeaderAbsent]).
//  3. [Engine.Resolve] maps each logical [Field] to a column index using the
//     synonym table. A headerless grid uses the fixed order
//     tier, yearsExperience, availability.
//  4. The coercers turn raw cells into typed values or [FieldError] entries.
//  5. [Engine.Extract] runs every coercer and returns either a complete
//     [Record] or all field errors together.
//
// # Errors
//
// Failures are reported as one of three types:
//
//   - [*DecodeError]: the buffer is not a workbook or has no sheets.
//   - [*StructureError]: the grid is empty, or a header has no data row.
//   - [FieldErrors]: one entry per invalid or missing field, never truncated
//     to the first failure.
//
// No partial record is ever returned alongside an error.
package extract
