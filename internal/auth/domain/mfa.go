package domain

// TOTPEnrollment is handed to the user once when a one-time code secret is
// created for their account.
type TOTPEnrollment struct {
	Secret  string // Base32 encoded secret for TOTP
	URL     string // otpauth:// URL for QR code generation
	Issuer  string
	Account string
}
