// Package dispatch implements the indirect call table.
//
// A Table has a fixed number of slots, each either empty or bound to a
// Target. Call checks the slot index, that the slot is bound, and that the
// arguments match the target's parameter types one for one before invoking
// it; results are checked against the declared result types afterwards.
package dispatch
