// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import "errors"

var (
	// ErrTypeViolation is returned when a value of the wrong runtime type is
	// assigned to a property.
	ErrTypeViolation = errors.New("type violation")
	// ErrCardinalityViolation is returned when a multi-valued slot would
	// exceed its upper bound, or is deleted from without naming a member.
	ErrCardinalityViolation = errors.New("cardinality violation")
	// ErrInvalidOperation is returned for operations a property or service
	// does not support in its current state.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrNotFound is returned for unknown ids, properties and members.
	ErrNotFound = errors.New("not found")
	// ErrReentrancy is returned when an operation is re-entered while it is
	// still running.
	ErrReentrancy = errors.New("reentrancy violation")
)
