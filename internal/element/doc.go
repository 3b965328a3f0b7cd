// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package element implements the in-memory object graph of a modeling tool.

A Metamodel declares Types and their properties. Four kinds of property
exist: attributes hold scalar values, associations link elements (single or
multi-valued, optionally composite, optionally with an opposite end that is
kept in sync), derived unions expose a read-only union of other properties,
and redefines rename or narrow an existing property for a subtype.

Elements are created and owned by a Factory, which assigns identities. Slots
that reference other elements store identities and resolve them through the
Factory, so a removed element can never be reached through a stale slot.

Every mutation publishes exactly one primary Event on the Bus before it
returns. Opposite ends are updated before the primary event is published,
and derived unions and redefines publish their correlated events right
after it. The package is single-threaded and performs no locking.
*/
package element
