// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// storedPoint is the on-disk representation of one indexed vector with
// its payload metadata.
type storedPoint struct {
	ID         uint64
	UUID       string
	Vector     []float32
	FilePath   string
	LineNumber int
	Role       string
	Snippet    string
	Timestamp  string
	SessionID  string
}

// storedPointMUS serializes storedPoint using the MUS format.
var storedPointMUS = storedPointSer{}

type storedPointSer struct{}

func (storedPointSer) Marshal(p storedPoint, bs []byte) (n int) {
	n = varint.Uint64.Marshal(p.ID, bs)
	n += ord.String.Marshal(p.UUID, bs[n:])
	n += varint.Int.Marshal(len(p.Vector), bs[n:])
	for _, v := range p.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	n += ord.String.Marshal(p.FilePath, bs[n:])
	n += varint.Int.Marshal(p.LineNumber, bs[n:])
	n += ord.String.Marshal(p.Role, bs[n:])
	n += ord.String.Marshal(p.Snippet, bs[n:])
	n += ord.String.Marshal(p.Timestamp, bs[n:])
	n += ord.String.Marshal(p.SessionID, bs[n:])
	return
}

func (storedPointSer) Unmarshal(bs []byte) (p storedPoint, n int, err error) {
	var n1 int
	p.ID, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	p.UUID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 {
		err = fmt.Errorf("negative vector length %d", length)
		return
	}
	p.Vector = make([]float32, length)
	for i := range p.Vector {
		p.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	p.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.LineNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Role, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Snippet, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Timestamp, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.SessionID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (storedPointSer) Size(p storedPoint) (size int) {
	size = varint.Uint64.Size(p.ID)
	size += ord.String.Size(p.UUID)
	size += varint.Int.Size(len(p.Vector))
	for _, v := range p.Vector {
		size += raw.Float32.Size(v)
	}
	size += ord.String.Size(p.FilePath)
	size += varint.Int.Size(p.LineNumber)
	size += ord.String.Size(p.Role)
	size += ord.String.Size(p.Snippet)
	size += ord.String.Size(p.Timestamp)
	size += ord.String.Size(p.SessionID)
	return
}

// marshalStoredPoint serializes a storedPoint to bytes.
func marshalStoredPoint(p storedPoint) []byte {
	buf := make([]byte, storedPointMUS.Size(p))
	storedPointMUS.Marshal(p, buf)
	return buf
}

// unmarshalStoredPoint deserializes a storedPoint from bytes.
func unmarshalStoredPoint(data []byte) (storedPoint, error) {
	p, _, err := storedPointMUS.Unmarshal(data)
	return p, err
}
