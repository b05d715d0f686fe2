// Package models defines the core domain models for the tally ledger.
//
// # Models
//
//   - Account: a member's running balance record (balance is authoritative,
//     never derived from transaction history at read time)
//   - Group: a set of one or more account ids; the sender/receiver operand
//     of every transaction
//   - Transaction: an immutable money movement between two groups, tagged
//     with a closed set of kinds
//   - Article: a purchasable item with timestamped prices
//
// # Design Principles
//
//  1. Every account owns exactly one "personal" group containing only
//     itself; 1-to-1 operations use personal groups as operands.
//  2. Multi-member groups exist only to represent a specific N-way split
//     and are looked up by exact member set so repeated splits among the
//     same people reuse the group.
//  3. Transaction amounts are stored as non-negative magnitudes; direction
//     is encoded by the tag and by which side is sender vs. receiver.
//  4. Two system accounts with reserved ids act as the external cash
//     reservoir and the purchase register; they are exempt from balance
//     limits and hidden from ordinary listings.
package models
