// Package dto defines data transfer objects for the admin surface.
package dto

// AdminCreateUserReq is the request body for adding a user through the admin.
type AdminCreateUserReq struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     *bool  `json:"is_staff"`
	IsSuperuser *bool  `json:"is_superuser"`
	IsActive    *bool  `json:"is_active"`
}

// AdminUpdateUserReq is the request body for changing a user through the
// admin. A non-empty password replaces the stored hash.
type AdminUpdateUserReq struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    string  `json:"password"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsActive    *bool   `json:"is_active"`
}

// FormField describes one field of the admin add form.
type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// AddFormRes describes the add form so clients can render it.
type AddFormRes struct {
	Fields []FormField `json:"fields"`
}
