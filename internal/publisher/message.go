package publisher

// TickMessage is the wire payload published to {topic_prefix}/time.
// Exactly one field: seconds since the Unix epoch, no fractional
// component. The clock firmware parses this key by name, so the JSON
// shape must not grow extra fields.
type TickMessage struct {
	UnixTime int64 `json:"unix_time"`
}
