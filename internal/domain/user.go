package domain

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

var Roles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

// IsBackOffice is true for roles allowed into the admin console.
func (r Role) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleStaff
}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt Time   `json:"createdAt"`
	UpdatedAt Time   `json:"updatedAt"`
}

type UserUpdate struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AuthResponse covers both backend spellings of the token field.
type AuthResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	Token       string `json:"token,omitempty"`
	TokenType   string `json:"tokenType,omitempty"`
	Username    string `json:"username,omitempty"`
	User        User   `json:"user"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
}

func (a AuthResponse) BearerToken() string {
	if a.AccessToken != "" {
		return a.AccessToken
	}
	return a.Token
}
