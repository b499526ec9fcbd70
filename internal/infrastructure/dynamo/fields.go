package dynamo

// DynamoDB attribute and index names used in key and update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotificationID = "notification_id"
	fieldReadState      = "read_state"
	fieldRecipientKind  = "recipient_kind"
	fieldInboxKey       = "inbox_key"
	fieldToken          = "token"
	fieldUserID         = "user_id"
	fieldStudentID      = "student_id"
	fieldEnable         = "enable"

	indexUserID = "user_id-index"
	indexEnable = "enable-index"
)
