package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 行程监护模块错误。
var (
	InvalidInput    = Definition{Code: "INVALID_INPUT", Message: "Invalid journey input"}
	AlreadyActive   = Definition{Code: "ALREADY_ACTIVE", Message: "A journey is already active"}
	NoActiveJourney = Definition{Code: "NO_ACTIVE_JOURNEY", Message: "No active journey"}
)

// 通知模块错误。
var (
	NotificationDeliveryFailed = Definition{Code: "NOTIFICATION_DELIVERY_FAILED", Message: "Notification delivery failed"}
	DispatcherUnavailable      = Definition{Code: "DISPATCHER_UNAVAILABLE", Message: "Message dispatcher unavailable"}
)

// 联系人模块错误。
var (
	ContactLimitReached = Definition{Code: "CONTACT_LIMIT_REACHED", Message: "Contact limit reached"}
	ContactNotFound     = Definition{Code: "CONTACT_NOT_FOUND", Message: "Contact not found"}
	InvalidPhone        = Definition{Code: "INVALID_PHONE", Message: "Invalid phone number"}
)

// 短信客户端错误。
var (
	ErrSignNameRequired     = Definition{Code: "SMS_SIGN_NAME_REQUIRED", Message: "SMS sign name is required"}
	ErrTemplateCodeRequired = Definition{Code: "SMS_TEMPLATE_CODE_REQUIRED", Message: "SMS template code is required"}
	ErrPhonesListEmpty      = Definition{Code: "SMS_PHONES_EMPTY", Message: "SMS phone list is empty"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidInput.Code:               InvalidInput,
	AlreadyActive.Code:              AlreadyActive,
	NoActiveJourney.Code:            NoActiveJourney,
	NotificationDeliveryFailed.Code: NotificationDeliveryFailed,
	DispatcherUnavailable.Code:      DispatcherUnavailable,
	ContactLimitReached.Code:        ContactLimitReached,
	ContactNotFound.Code:            ContactNotFound,
	InvalidPhone.Code:               InvalidPhone,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError 表示消费侧应当直接 Ack 并跳过的消息。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}
