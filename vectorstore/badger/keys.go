package badger

import (
	"encoding/binary"

	"recall/core"
)

// Key prefixes for different data types
const (
	collectionMetaPrefix = "colmeta"
	pointRecordPrefix    = "point"
)

// makeCollectionKey generates the metadata key marking a collection's
// existence.
func makeCollectionKey(collection string) []byte {
	return []byte(collectionMetaPrefix + ":" + collection)
}

// makePointKey generates a key for a point by ID within a collection.
// The ID is written in BigEndian order so lexicographic iteration is
// stable.
func makePointKey(collection string, id core.ID) []byte {
	prefix := pointKeyPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// pointKeyPrefix generates the common prefix of all point keys in a
// collection.
func pointKeyPrefix(collection string) []byte {
	return []byte(pointRecordPrefix + ":" + collection + ":")
}
