package dto

// CreateAppUserRequest is the union of the student and teacher forms. The
// role decides which subset is validated.
type CreateAppUserRequest struct {
	Role        string `json:"role" form:"role"`
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	Email       string `json:"email" form:"email"`
	FirstName   string `json:"first_name" form:"first_name"`
	LastName    string `json:"last_name" form:"last_name"`
	Dept        string `json:"dept" form:"dept"`
	Description string `json:"description" form:"description"`
}

// StudentForm holds the fields accepted when creating a student account.
type StudentForm struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// TeacherForm extends StudentForm with the teacher profile.
type TeacherForm struct {
	StudentForm
	Dept        string `json:"dept" validate:"max=254"`
	Description string `json:"description"`
}

// StudentForm projects the request onto the student form.
func (r CreateAppUserRequest) StudentForm() StudentForm {
	return StudentForm{
		Username:  r.Username,
		Password:  r.Password,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// TeacherForm projects the request onto the teacher form.
func (r CreateAppUserRequest) TeacherForm() TeacherForm {
	return TeacherForm{StudentForm: r.StudentForm(), Dept: r.Dept, Description: r.Description}
}

// TokenResponse is returned by account creation.
type TokenResponse struct {
	Token string `json:"token"`
}

// ObtainTokenRequest carries login credentials.
type ObtainTokenRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ObtainTokenResponse returns the caller token and resolved role.
type ObtainTokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisterDeviceRequest registers a GCM device for the caller.
type RegisterDeviceRequest struct {
	RegistrationID string `json:"registration_id" form:"registration_id" validate:"required"`
	DeviceID       string `json:"device_id" form:"device_id" validate:"omitempty,hexadecimal,max=32"`
}

// RegisterDeviceResponse reports the device state and whether it was new.
type RegisterDeviceResponse struct {
	Active  bool `json:"active"`
	Created bool `json:"created"`
}
