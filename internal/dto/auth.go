package dto

// RegisterRequest starts registration by requesting an OTP for an
// institutional email address.
type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest completes registration. The OTP must match the latest
// unconsumed code issued for the email.
type VerifyOTPRequest struct {
	Email      string `json:"email" validate:"required,email"`
	OTP        string `json:"otp" validate:"required,len=6"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required"`
	RollNo     string `json:"roll_no" validate:"required"`
	Department string `json:"department" validate:"required"`
	Phone      string `json:"phone" validate:"omitempty,min=10,max=15"`
}

// LoginRequest authenticates a registered user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ReviewerLoginRequest authenticates a phase-scoped reviewer against the
// credentials held on the system configuration.
type ReviewerLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phase    string `json:"phase" validate:"required,oneof=phase1 phase2 final"`
}
