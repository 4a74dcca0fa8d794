package dto

type SignUpDTO struct {
	Name                 string `json:"name"                 validate:"required,max=100"`
	Email                string `json:"email"                validate:"required,email"`
	Password             string `json:"password"             validate:"required,strongpwd"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required"`
	Company              string `json:"company"              validate:"omitempty,max=100"`
	Role                 string `json:"role"                 validate:"omitempty,oneof=USER GUEST"`
}

type SignInDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokensDTO struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// UpdateProfileDTO is a partial update, absent fields stay unchanged.
type UpdateProfileDTO struct {
	Name     string `json:"name"     validate:"omitempty,max=100"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,strongpwd"`
	Company  string `json:"company"  validate:"omitempty,max=100"`
}

type PageDTO struct {
	Page int `form:"page" validate:"omitempty,min=1"`
	Size int `form:"size" validate:"omitempty,min=1,max=100"`
}

type UserIDDTO struct {
	ID string `form:"id" validate:"required"`
}

type SendMailDTO struct {
	Email       string `json:"email"       validate:"required,email"`
	Name        string `json:"name"        validate:"required"`
	Redirection string `json:"redirection" validate:"omitempty,url"`
}
