package internal

// Reasons an ingested event is skipped instead of applied.
const (
	ReasonDuplicate        = "duplicate"
	ReasonMissingData      = "missing_data"
	ReasonUnsupportedEvent = "unsupported_event"
)

// Actions applied to local state by a dispatched event.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ReasonDescriptions maps each skip reason to a human readable description.
var ReasonDescriptions = map[string]string{
	ReasonDuplicate:        "event was already processed",
	ReasonMissingData:      "event carries no usable object",
	ReasonUnsupportedEvent: "event type is not synchronized",
}
