package errs

// 业务错误码：1xxx 通用，2xxx 鉴权，3xxx 消息
const (
	ArgsError           = 1001
	RecordNotFoundError = 1002
	OperationError      = 1003

	AuthRejectedError = 2001
	TokenExpiredError = 2002

	SignalIgnoredError = 3001
)

var (
	ErrArgs            = NewCodeError(ArgsError, "ArgsError")
	ErrRecordNotFound  = NewCodeError(RecordNotFoundError, "RecordNotFound")
	ErrOperationFailed = NewCodeError(OperationError, "OperationFailed")

	ErrAuthRejected = NewCodeError(AuthRejectedError, "AuthenticationRejected")
	ErrTokenExpired = NewCodeError(TokenExpiredError, "TokenExpired")

	ErrSignalIgnored = NewCodeError(SignalIgnoredError, "SignalIgnored")
)
