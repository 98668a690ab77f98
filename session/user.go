package session

import (
	"encoding/json"
	"time"
)

const (
	UserKindPerson                 UserKind = "UserPerson"
	UserKindCompany                UserKind = "UserCompany"
	UserKindAPIKey                 UserKind = "UserApiKey"
	UserKindPaymentServiceProvider UserKind = "UserPaymentServiceProvider"
)

// UserKind names the shape of the identity record the platform authenticated.
type UserKind string

// User is the identity the platform reports back on session registration.
// Exactly one of the records is set.
type User struct {
	Person                 *UserPerson
	Company                *UserCompany
	APIKey                 *UserAPIKey
	PaymentServiceProvider *UserPaymentServiceProvider
}

// UserPerson is a natural person holding accounts with the platform.
type UserPerson struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	LegalName      string `json:"legal_name"`
	SessionTimeout int64  `json:"session_timeout"`
}

// UserCompany is a registered company holding accounts with the platform.
type UserCompany struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Name           string `json:"name"`
	Country        string `json:"country"`
	SessionTimeout int64  `json:"session_timeout"`
}

// UserAPIKey is a standalone credential acting on behalf of its issuer.
type UserAPIKey struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	SessionTimeout int64  `json:"session_timeout"`
}

// UserPaymentServiceProvider is a licensed third party initiating payments
// for its own customers.
type UserPaymentServiceProvider struct {
	ID                           string `json:"id"`
	DisplayName                  string `json:"display_name"`
	CertificateDistinguishedName string `json:"certificate_distinguished_name"`
	SessionTimeout               int64  `json:"session_timeout"`
}

// Kind reports which record is set.
func (u User) Kind() UserKind {
	switch {
	case u.Person != nil:
		return UserKindPerson
	case u.Company != nil:
		return UserKindCompany
	case u.APIKey != nil:
		return UserKindAPIKey
	case u.PaymentServiceProvider != nil:
		return UserKindPaymentServiceProvider
	default:
		return ""
	}
}

func (u User) IsEmpty() bool {
	return u.Kind() == ""
}

// ID returns the identifier of whichever record is set.
func (u User) ID() string {
	switch {
	case u.Person != nil:
		return u.Person.ID
	case u.Company != nil:
		return u.Company.ID
	case u.APIKey != nil:
		return u.APIKey.ID
	case u.PaymentServiceProvider != nil:
		return u.PaymentServiceProvider.ID
	default:
		return ""
	}
}

// DisplayName returns the display name of whichever record is set.
func (u User) DisplayName() string {
	switch {
	case u.Person != nil:
		return u.Person.DisplayName
	case u.Company != nil:
		return u.Company.DisplayName
	case u.APIKey != nil:
		return u.APIKey.DisplayName
	case u.PaymentServiceProvider != nil:
		return u.PaymentServiceProvider.DisplayName
	default:
		return ""
	}
}

// SessionTimeout returns how long a session opened for this user stays valid.
func (u User) SessionTimeout() time.Duration {
	var seconds int64
	switch {
	case u.Person != nil:
		seconds = u.Person.SessionTimeout
	case u.Company != nil:
		seconds = u.Company.SessionTimeout
	case u.APIKey != nil:
		seconds = u.APIKey.SessionTimeout
	case u.PaymentServiceProvider != nil:
		seconds = u.PaymentServiceProvider.SessionTimeout
	}
	return time.Duration(seconds) * time.Second
}

// MarshalJSON writes the user in its wire form, a single-key wrapper object
// named after the kind.
func (u User) MarshalJSON() ([]byte, error) {
	wrapper := map[string]interface{}{}
	switch {
	case u.Person != nil:
		wrapper[string(UserKindPerson)] = u.Person
	case u.Company != nil:
		wrapper[string(UserKindCompany)] = u.Company
	case u.APIKey != nil:
		wrapper[string(UserKindAPIKey)] = u.APIKey
	case u.PaymentServiceProvider != nil:
		wrapper[string(UserKindPaymentServiceProvider)] = u.PaymentServiceProvider
	default:
		return nil, ErrMissingUserRecord
	}
	return json.Marshal(wrapper)
}

// UnmarshalJSON reads the wrapper object back, requiring exactly one
// recognized kind. An unknown kind is fatal: the caller cannot safely act
// without knowing who it authenticated as.
func (u *User) UnmarshalJSON(data []byte) error {
	wrappers := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &wrappers); err != nil {
		return err
	}

	parsed := User{}
	count := 0
	for kind, raw := range wrappers {
		count++
		switch UserKind(kind) {
		case UserKindPerson:
			record := &UserPerson{}
			if err := json.Unmarshal(raw, record); err != nil {
				return err
			}
			parsed.Person = record
		case UserKindCompany:
			record := &UserCompany{}
			if err := json.Unmarshal(raw, record); err != nil {
				return err
			}
			parsed.Company = record
		case UserKindAPIKey:
			record := &UserAPIKey{}
			if err := json.Unmarshal(raw, record); err != nil {
				return err
			}
			parsed.APIKey = record
		case UserKindPaymentServiceProvider:
			record := &UserPaymentServiceProvider{}
			if err := json.Unmarshal(raw, record); err != nil {
				return err
			}
			parsed.PaymentServiceProvider = record
		default:
			return NewUnknownUserKindError(kind)
		}
	}

	if count == 0 {
		return ErrMissingUserRecord
	}
	if count > 1 {
		return ErrMultipleUserRecords
	}

	*u = parsed
	return nil
}
