package kv

import (
	"encoding/binary"

	"tsdata-bench/bench"

	"github.com/tinylib/msgp/msgp"
)

const rowFields = 3

// Key is the big-endian row id, so cursor order equals id order.
func Key(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// EncodeRow appends r to b as a MessagePack array [id, created, value].
func EncodeRow(b []byte, r bench.Row) []byte {
	b = msgp.AppendArrayHeader(b, rowFields)
	b = msgp.AppendInt64(b, r.ID)
	b = msgp.AppendTime(b, r.Created)
	b = msgp.AppendFloat64(b, r.Value)
	return b
}

func DecodeRow(b []byte) (bench.Row, error) {
	var r bench.Row
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return r, err
	}
	if sz != rowFields {
		return r, msgp.ArrayError{Wanted: rowFields, Got: sz}
	}
	if r.ID, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return r, err
	}
	if r.Created, b, err = msgp.ReadTimeBytes(b); err != nil {
		return r, err
	}
	if r.Value, _, err = msgp.ReadFloat64Bytes(b); err != nil {
		return r, err
	}
	return r, nil
}
