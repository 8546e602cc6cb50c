package form

import "strings"

// ProfilePictureExtensions lists the accepted upload extensions.
var ProfilePictureExtensions = []string{"jpg", "png"}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	FirstName       string `form:"firstname" validate:"notblank,max=50"`
	LastName        string `form:"lastname" validate:"notblank,max=50"`
	Username        string `form:"username" validate:"notblank,length=2:20"`
	Email           string `form:"email" validate:"notblank,email,max=120"`
	Password        string `form:"password" validate:"notblank"`
	ConfirmPassword string `form:"confirm_password" validate:"notblank,eqfield=Password"`
}

// Normalize trims surrounding whitespace from everything but the passwords.
func (f *RegisterForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `form:"username" validate:"notblank,length=2:20"`
	Password string `form:"password" validate:"notblank"`
	Remember bool   `form:"remember"`
}

// Normalize trims the username.
func (f *LoginForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
}

// EditProfileForm is the profile form. The picture arrives as a multipart file and is checked
// with FileAllowed.
type EditProfileForm struct {
	FirstName string `form:"firstname" validate:"notblank,max=50"`
	LastName  string `form:"lastname" validate:"notblank,max=50"`
	Username  string `form:"username" validate:"notblank,length=2:20"`
	Email     string `form:"email" validate:"notblank,email,max=120"`
}

// Normalize trims every field.
func (f *EditProfileForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// PostForm creates or updates a post.
type PostForm struct {
	Title   string `form:"title" validate:"notblank,max=100"`
	Content string `form:"content" validate:"notblank"`
}

// Normalize trims the title.
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
}

// DeletePostForm only confirms the deletion; the CSRF token is its one real input.
type DeletePostForm struct{}

// ContactForm is the contact-us form.
type ContactForm struct {
	FromEmail string `form:"from_email" validate:"notblank,email"`
	Subject   string `form:"subject" validate:"notblank,max=200"`
	Message   string `form:"message" validate:"notblank"`
}

// Normalize trims the address and subject.
func (f *ContactForm) Normalize() {
	f.FromEmail = strings.TrimSpace(f.FromEmail)
	f.Subject = strings.TrimSpace(f.Subject)
}
