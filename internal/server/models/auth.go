package models

// AuthStatus is the outcome of an auth intent, delivered only to the
// connection that issued it.
type AuthStatus struct {
	Success  bool
	IsLogin  bool
	NeedsOTP bool
	User     string
	Message  string
	Token    string
}

// Reply texts.
const (
	MsgVerified           = "Verified."
	MsgInvalidCredentials = "Invalid credentials."
	MsgPasswordTooShort   = "Min 7 chars required!"
	MsgOTPSent            = "OTP sent to email."
	MsgEmailFailed        = "Email failed."
	MsgAccountCreated     = "Account Created! Log in."
	MsgUserExists         = "User exists."
	MsgIncorrectOTP       = "Incorrect OTP."
	MsgResetCodeSent      = "Code sent!"
	MsgEmailNotFound      = "Email not found."
	MsgPasswordUpdated    = "Password updated!"
	MsgResetRejected      = "Invalid OTP or password short."
	MsgServerError        = "Server error."
)

func Failure(msg string) AuthStatus {
	return AuthStatus{Message: msg}
}
