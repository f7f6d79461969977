package user

import (
	"time"
)

// Column names tracked by SetName/SetEmail.
const (
	FieldName  = "name"
	FieldEmail = "email"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	changed []string
}

// SetName assigns the name and marks it for the next Repository.Update.
func (u *User) SetName(name string) {
	u.Name = name
	u.markChanged(FieldName)
}

// SetEmail assigns the email and marks it for the next Repository.Update.
func (u *User) SetEmail(email string) {
	u.Email = email
	u.markChanged(FieldEmail)
}

// ChangedFields returns the columns modified since the user was loaded.
func (u *User) ChangedFields() []string {
	return u.changed
}

func (u *User) markChanged(field string) {
	for _, f := range u.changed {
		if f == field {
			return
		}
	}
	u.changed = append(u.changed, field)
}

// Page is one slice of the user list plus the numbers needed to navigate it.
type Page struct {
	CurrentPage  int     `json:"current_page"`
	PerPage      int     `json:"per_page"`
	TotalRecords int     `json:"total_records"`
	TotalPages   int     `json:"total_pages"`
	Items        []*User `json:"items"`
}
