// Package policy holds the transition policy: an explicit table of permitted
// status edges plus the fields each edge requires. Representing the rules as
// data keeps them in one place and lets tests enumerate the table
// exhaustively instead of chasing scattered conditionals.
package policy
