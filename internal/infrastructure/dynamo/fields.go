package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
const (
	fieldUserID    = "user_id"
	fieldProfileID = "profile_id"
	fieldBlogID    = "blog_id"
	fieldEmail     = "email"
	fieldCode      = "code"
	fieldVerified  = "verified"
	fieldPublished = "published"
	fieldUpdatedAt = "updated_at"
	fieldExpiresAt = "expires_at"
)

// Secondary index names.
const (
	indexUsersByEmail     = "email-index"
	indexProfilesByUser   = "user_id-index"
	indexBlogsByProfile   = "profile_id-index"
	indexBlogsByPublished = "published-updated_at-index"
)
