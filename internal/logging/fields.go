package logging

// Shared attribute keys keep log lines queryable across components.
const (
	FieldComponent     = "component"
	FieldTask          = "task"
	FieldEventType     = "event_type"
	FieldCorrelationID = "correlation_id"

	FieldItemID      = "item_id"
	FieldChannelID   = "channel_id"
	FieldChannelName = "channel_name"
	FieldMessageID   = "message_id"
	FieldFileName    = "file_name"
	FieldFileType    = "file_type"
	FieldCategory    = "category"
	FieldBucket      = "bucket"
	FieldStatus      = "status"
	FieldRetryCount  = "retry_count"
	FieldError       = "error"
)
