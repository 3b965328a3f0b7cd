package undo

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/specialistvlad/modelcore/internal/element"
)

// Record is the serializable form of an Action. Elements are referenced by
// id and types by name, so a record can outlive the graph it came from.
type Record struct {
	Op        string `msgpack:"op"`
	Element   string `msgpack:"element,omitempty"`
	Type      string `msgpack:"type,omitempty"`
	Property  string `msgpack:"property,omitempty"`
	Value     any    `msgpack:"value,omitempty"`
	ValueRef  string `msgpack:"value_ref,omitempty"`
	ValueType string `msgpack:"value_type,omitempty"`
	OtherRef  string `msgpack:"other_ref,omitempty"`
	Index     int    `msgpack:"index,omitempty"`
}

// Records converts the transaction's actions in event order.
func (tx *Transaction) Records() []Record {
	out := make([]Record, len(tx.actions))
	for i, a := range tx.actions {
		out[i] = recordOf(a)
	}
	return out
}

// History returns the records of every transaction on the undo stack,
// oldest first.
func (m *Manager) History() [][]Record {
	out := make([][]Record, len(m.undo))
	for i, tx := range m.undo {
		out[i] = tx.Records()
	}
	return out
}

func recordOf(a Action) Record {
	r := Record{Op: a.Op.String(), Index: a.Index}
	if a.Element != nil {
		r.Element = a.Element.ID()
		r.Type = a.Element.Type().Name()
	}
	if a.Property != nil {
		r.Property = a.Property.Name()
	}
	switch v := a.Value.(type) {
	case *element.Element:
		r.ValueRef = v.ID()
	case *element.Type:
		r.ValueType = v.Name()
	default:
		r.Value = v
	}
	if o, ok := a.Other.(*element.Element); ok {
		r.OtherRef = o.ID()
	}
	return r
}

// EncodeRecords serializes one transaction's records.
func EncodeRecords(recs []Record) ([]byte, error) {
	b, err := msgpack.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode undo records: %w", err)
	}
	return b, nil
}

// DecodeRecords is the inverse of EncodeRecords.
func DecodeRecords(b []byte) ([]Record, error) {
	var recs []Record
	if err := msgpack.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode undo records: %w", err)
	}
	return recs, nil
}

// WriteRecords appends one transaction to a journal stream.
func WriteRecords(w io.Writer, recs []Record) error {
	if err := msgpack.NewEncoder(w).Encode(recs); err != nil {
		return fmt.Errorf("write undo journal: %w", err)
	}
	return nil
}

// ReadJournal reads every transaction written with WriteRecords.
func ReadJournal(r io.Reader) ([][]Record, error) {
	dec := msgpack.NewDecoder(r)
	var out [][]Record
	for {
		var recs []Record
		err := dec.Decode(&recs)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read undo journal: %w", err)
		}
		out = append(out, recs)
	}
}
