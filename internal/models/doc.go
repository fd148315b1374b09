// Package models defines the core domain models for TeamTime.
//
// # Models
//
//   - Event: a titled, timed calendar entry tied to a single day
//   - Group: a named, colored collection of events with an explicit membership list
//   - Date: a civil calendar date (year/month/day, no time of day)
//
// # Design Principles
//
// 1. **Plain values**: models are copied freely; stores hand out snapshots, never live references
// 2. **Avoid circular references**: events point at groups by ID string, groups list event IDs
// 3. **Validation lives here**: stores and the coordinator share the same validators
//
// # Time representation
//
// StartTime and EndTime are minutes since midnight in the range 0..1440.
// An event spanning 0..1440 is an all-day event.
package models
