package application

// CredentialKind tags which verification path a Credential takes.
type CredentialKind uint8

const (
	CredentialPassword CredentialKind = iota + 1
	CredentialBiometric
	CredentialBearer
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialPassword:
		return "password"
	case CredentialBiometric:
		return "biometric"
	case CredentialBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// Credential is a secret presented to prove identity.
// Email is only set for password credentials.
type Credential struct {
	Kind   CredentialKind
	Email  string
	Secret string
}

func PasswordCredential(email, password string) Credential {
	return Credential{Kind: CredentialPassword, Email: email, Secret: password}
}

func BiometricCredential(key string) Credential {
	return Credential{Kind: CredentialBiometric, Secret: key}
}

func BearerCredential(token string) Credential {
	return Credential{Kind: CredentialBearer, Secret: token}
}

// String never includes the secret so credentials are safe to log.
func (c Credential) String() string {
	return "credential(" + c.Kind.String() + ")"
}

// Identity is the verified caller attached to a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Empty reports whether the identity carries no user.
func (i *Identity) Empty() bool {
	return i == nil || i.ID == ""
}
