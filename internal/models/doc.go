// Package models defines the domain records of Paynion.
//
// # Records
//
//   - User: a registered account. Members of groups are referenced by user ID.
//   - Group: a set of members sharing expenses.
//   - Expense and Split: who paid for something and how much each member owes for it.
//   - Settlement: a transfer between two members that clears part of their net debt.
//     It moves through Pending, PaidRequested and Settled.
//   - PaymentHistory: an immutable record written when a settlement is confirmed.
//   - Payment: a UPI payment initiation.
//
// # Conventions
//
//  1. Relationships use ID strings, never pointers.
//  2. Timestamps are Unix seconds. Zero means "not set" for optional timestamps.
//  3. Money is decimal.Decimal with two decimal places.
package models
