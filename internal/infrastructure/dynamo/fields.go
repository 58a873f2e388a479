package dynamo

// DynamoDB attribute names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail     = "email"
	fieldOwnerID   = "owner_id"
	fieldCodeID    = "code_id"
	fieldAttempts  = "attempts"
	fieldEnable    = "enable"
	fieldClaims    = "claims"
	fieldExpiresAt = "expires_at"
	fieldUpdatedAt = "updated_at"
)
