package session

import "context"

// Field names a persisted session value.
type Field string

const (
	// FieldToken holds the encoded access credential.
	FieldToken Field = "token"
	// FieldRefreshToken holds the refresh credential.
	FieldRefreshToken Field = "refresh_token"
	// FieldRole holds the resolved role.
	FieldRole Field = "userRole"
)

// Fields lists every field a Store may hold, in a stable order.
var Fields = []Field{FieldToken, FieldRefreshToken, FieldRole}

// Session is a point-in-time read of the three persisted fields. Empty strings
// mean absent.
type Session struct {
	EncodedToken string
	RefreshToken string
	Role         string
}

// Empty reports whether no field is set.
func (s Session) Empty() bool {
	return s.EncodedToken == "" && s.RefreshToken == "" && s.Role == ""
}

// Snapshot reads all fields from store.
func Snapshot(ctx context.Context, store Store) (Session, error) {
	var out Session
	for _, f := range Fields {
		v, ok, err := store.Get(ctx, f)
		if err != nil {
			return Session{}, err
		}
		if !ok {
			continue
		}
		switch f {
		case FieldToken:
			out.EncodedToken = v
		case FieldRefreshToken:
			out.RefreshToken = v
		case FieldRole:
			out.Role = v
		}
	}
	return out, nil
}
