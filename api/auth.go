package api

import (
	"encoding/json"
	"net/http"

	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/errors"
	"github.com/tokenarena/arena-backend/internal"
)

// registerHandler creates a new user account. The email must be valid and
// unique, and the password long enough. On success the user is logged in
// right away and gets a JWT token back.
func (a *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	userInfo := &UserInfo{}
	if err := json.NewDecoder(r.Body).Decode(userInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !internal.ValidEmail(userInfo.Email) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	if len(userInfo.Password) < minPasswordLength {
		errors.ErrPasswordTooShort.Write(w)
		return
	}
	if userInfo.Username == "" {
		errors.ErrInvalidUserData.Withf("username is required").Write(w)
		return
	}
	// the phone number is optional, but when given it must be a real one
	// since SMS notifications are sent to it
	if userInfo.Phone != "" {
		sanitized, err := internal.SanitizeAndVerifyPhoneNumber(userInfo.Phone, "")
		if err != nil {
			errors.ErrPhoneMalformed.Write(w)
			return
		}
		userInfo.Phone = sanitized
	}
	userID, err := a.db.SetUser(&db.User{
		Email:    userInfo.Email,
		Username: userInfo.Username,
		Phone:    userInfo.Phone,
		Password: internal.HexHashPassword(passwordSalt, userInfo.Password),
	})
	if err != nil {
		if err == db.ErrAlreadyExists {
			errors.ErrDuplicateConflict.With("email already registered").Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	res, err := a.buildLoginResponse(userID)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	httpWriteJSON(w, res)
}

// authLoginHandler authenticates a user and returns a JWT token.
func (a *API) authLoginHandler(w http.ResponseWriter, r *http.Request) {
	loginInfo := &UserInfo{}
	if err := json.NewDecoder(r.Body).Decode(loginInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	// get the user information from the database by email
	user, err := a.db.UserByEmail(loginInfo.Email)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrUnauthorized.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// check the password
	if pass := internal.HexHashPassword(passwordSalt, loginInfo.Password); pass != user.Password {
		errors.ErrUnauthorized.Write(w)
		return
	}
	// generate a new token with the user identifier as the subject
	res, err := a.buildLoginResponse(user.ID)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	httpWriteJSON(w, res)
}

// refreshTokenHandler refreshes the JWT token for an authenticated user.
func (a *API) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	res, err := a.buildLoginResponse(user.ID)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	httpWriteJSON(w, res)
}
