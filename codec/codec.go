// Package codec provides pluggable (de)serialization of values to bytes.
// The snapshot store uses a Codec to estimate the serialized size of a
// candidate snapshot; the HTTP source uses one to decode response bodies.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
