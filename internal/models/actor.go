package models

// Actor is the identity behind a request: a logged-in user or a guest
// holding an anonymous session id.
type Actor struct {
	UserID      uint
	Name        string
	Role        Role
	SessionID   string
	LastOrderID uint
}

// IsAuthenticated reports whether the actor is a logged-in user.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != 0
}

// IsAdmin reports whether the actor may use back-office operations.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == RoleAdmin
}

// CartOwner returns the key that owns the actor's cart rows.
func (a Actor) CartOwner() CartOwner {
	if a.IsAuthenticated() {
		return CartOwner{UserID: a.UserID}
	}
	return CartOwner{SessionID: a.SessionID}
}

// CartOwner identifies a cart by user id or, for guests, by session id.
// UserID takes precedence when both are set.
type CartOwner struct {
	UserID    uint
	SessionID string
}

// IsZero reports whether the owner cannot hold any cart rows.
func (o CartOwner) IsZero() bool {
	return o.UserID == 0 && o.SessionID == ""
}

// Columns returns the nullable user_id and session_id values for a new row.
func (o CartOwner) Columns() (*uint, *string) {
	if o.UserID != 0 {
		id := o.UserID
		return &id, nil
	}
	if o.SessionID != "" {
		sid := o.SessionID
		return nil, &sid
	}
	return nil, nil
}
