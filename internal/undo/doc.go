// Package undo records change events into transactions of reverse actions
// and replays them to undo and redo user edits.
//
// Every event observed while a transaction is open becomes an Action: a
// tagged record naming an operation, an element, a property and the values
// needed to restore the state before the event. Replaying a transaction
// applies its actions in reverse order. Replay itself runs inside a fresh
// transaction, so undoing produces the transaction that redo replays.
package undo
