// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Expense: one financial event inside a Group, with its Allocations
//   - Allocation: one participant's portion of an Expense and its settlement state
//   - Group: a set of members who share expenses
//   - User: a registered member account
//   - Income: a recurring or one-time income source owned by a single user
//
// Members are identified everywhere by the stable subject id issued by the
// identity provider (the JWT "sub" claim). Relationships use ID strings
// instead of pointers so that models can be passed between the storage and
// ledger layers without cycles.
//
// Money is carried as float64 and rounded to two decimal places on output.
package models
