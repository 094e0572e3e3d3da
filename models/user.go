package models

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	Role        string `json:"role"` // 'admin' u 'operador'
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastLoginAt string `json:"last_login_at"`
}

const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)
