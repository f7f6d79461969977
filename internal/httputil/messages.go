package httputil

// Client-facing error messages.
const (
	MsgInvalidRequestBody   = "Invalid request body!"
	MsgInvalidUserID        = "Invalid user ID!"
	MsgInvalidEmail         = "Invalid e-mail format!"
	MsgInvalidPagination    = "Invalid pagination parameters!"
	MsgCredentialsRequired  = "E-mail and password are required!"
	MsgCreateFieldsRequired = "Name, e-mail and password are required!"
	MsgUpdateFieldsRequired = "At least one field (name or e-mail) is required!"
	MsgPasswordsRequired    = "Old and new passwords are required!"
	MsgEmailRequired        = "E-mail is required!"
	MsgPasswordTooLong      = "Password must be at most 72 bytes!"
	MsgUserNotFound         = "User not found :/"
	MsgEmailAlreadyInUse    = "E-mail already registered!"
	MsgIncorrectPassword    = "Incorrect password!"
	MsgTokenMissing         = "Token missing!"
	MsgInternalError        = "Internal server error!"
)
