package fhir

// A RawResource carries an already serialized document together with the
// name of the server-side collection it belongs to. It lets callers push
// documents from disk through the typed exchange without a Go model for
// every resource kind.
type RawResource struct {
	Kind string
	Json []byte
}

func (r RawResource) ResourceType() string {
	return r.Kind
}

func (r RawResource) MarshalJSON() ([]byte, error) {
	json := make([]byte, len(r.Json))
	copy(json, r.Json)
	return json, nil
}

func (r *RawResource) UnmarshalJSON(json []byte) error {
	r.Json = make([]byte, len(json))
	copy(r.Json, json)
	return nil
}
