package cmd

import "time"

// Config carries everything the composition root needs to wire the
// application. Values come from the environment; see cmd/app/main.go.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// TaxRate applies to the discounted subtotal of every order opened
	// while it is in effect. Stored per order, so changing it never
	// rewrites existing ledgers.
	TaxRate float64

	// EmailSkipStatuses lists status ids for which customer email is
	// skipped as non-actionable.
	EmailSkipStatuses []string

	// SideEffectTimeout bounds every outbound side-effect call.
	SideEffectTimeout time.Duration

	EmailFromName string
	SMTPHost      string
	SMTPPort      int
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string

	// JWTSecret signs and verifies staff bearer tokens.
	JWTSecret string

	// NoteDeleteSecretHash is the bcrypt hash of the shared secret gating
	// note-event deletion. The plaintext is never configured.
	NoteDeleteSecretHash string

	// DeviceSecretKey is the hex-encoded 32-byte key sealing device
	// PINs/passcodes at rest.
	DeviceSecretKey string

	// EventCacheTTL is how long a cached event trail stays valid without
	// being invalidated by a mutation.
	EventCacheTTL time.Duration

	// AllowItemEditsAfterClose permits line-item and discount edits on
	// closed orders. Off by default; closed ledgers are frozen.
	AllowItemEditsAfterClose bool
}
