package models

// LoginCredentials is the payload of the login endpoint.
// Both fields are required, mirroring the login form.
type LoginCredentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the payload of the registration endpoint. The registration
// form marks nothing as required, so neither does this type.
type Registration struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	PictureURL string `json:"pictureUrl"`
}

// AuthResponse is the success body of both endpoints.
type AuthResponse struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	Picture string `json:"picture"`
	ID      string `json:"_id"`
}

// Complete reports whether the response carries enough to build a Session.
func (r AuthResponse) Complete() bool {
	return r.Email != "" && r.Token != ""
}

// Session converts the response into the session it establishes.
func (r AuthResponse) Session() Session {
	return Session{
		UserID:    r.ID,
		User:      r.Email,
		Picture:   r.Picture,
		Token:     r.Token,
		ExpiresAt: TokenExpiry(r.Token),
	}
}

// SelectedImage is a local profile picture picked on the registration page.
type SelectedImage struct {
	Path string
	MIME string
	Data []byte

	// Preview is a data URL ("data:image/png;base64,...") for display.
	Preview string
}
