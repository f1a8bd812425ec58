package domain

// KeyPrefix namespaces every key this service writes to the vector store.
const KeyPrefix = "straindex:"

// Distance is the similarity metric of a vector collection.
type Distance string

const (
	// DistanceCosine is cosine distance.
	DistanceCosine Distance = "cosine"
	// DistanceEuclidean is L2 distance.
	DistanceEuclidean Distance = "euclidean"
	// DistanceDot is inner product distance.
	DistanceDot Distance = "dot"
)

// FieldKind is the indexing type of a payload field.
type FieldKind string

const (
	// FieldTag is an exact-match string field.
	FieldTag FieldKind = "tag"
	// FieldNumeric is a numeric field.
	FieldNumeric FieldKind = "numeric"
)

// PayloadField declares an indexed payload field of a collection.
type PayloadField struct {
	Name string
	Kind FieldKind
}

// CollectionDescriptor declares a logical vector collection: one descriptor
// per collection, registered at startup. Existence is ensured lazily —
// created if absent, otherwise left untouched (no schema reconciliation).
type CollectionDescriptor struct {
	Name       string
	Dimensions int
	Distance   Distance
	Fields     []PayloadField
}

// Point is a single vector-store entry. The vector length must equal the
// owning collection's declared dimensionality; the store surfaces the
// failure, it is not enforced client-side.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]string
}

// Filter is a conjunction of field-equality constraints: all must match.
type Filter map[string]string

// ScoredPoint is a search hit with its similarity score.
type ScoredPoint struct {
	Point
	Score float64
}
